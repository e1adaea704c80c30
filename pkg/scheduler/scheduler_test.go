package scheduler_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/conveyor-ci/conveyor/pkg/scheduler"
)

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler[string]

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Describe("AddWork", func() {
		It("should add work and return a future", func() {
			s = scheduler.NewScheduler[string](1)

			work := func(ctx context.Context) (string, error) {
				return "done", nil
			}

			future := s.AddWork(work)
			Expect(future).NotTo(BeNil())

			var result scheduler.Result[string]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("done"))
		})

		It("should deliver errors on the future", func() {
			s = scheduler.NewScheduler[string](1)

			boom := errors.New("boom")
			future := s.AddWork(func(ctx context.Context) (string, error) {
				return "", boom
			})

			var result scheduler.Result[string]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(boom))
		})
	})

	Describe("Run work", func() {
		It("should execute multiple work items", func() {
			s = scheduler.NewScheduler[string](2)

			results := make(chan int, 3)
			for i := range 3 {
				idx := i
				work := func(ctx context.Context) (string, error) {
					results <- idx
					return "", nil
				}
				s.AddWork(work)
			}

			Eventually(func() int {
				return len(results)
			}, 2*time.Second, 100*time.Millisecond).Should(Equal(3))
		})

		It("should recover from a panicking work function", func() {
			s = scheduler.NewScheduler[string](1)

			future := s.AddWork(func(ctx context.Context) (string, error) {
				panic("kaboom")
			})

			var result scheduler.Result[string]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Err).To(HaveOccurred())
			Expect(result.Err.Error()).To(ContainSubstring("worker panicked"))
		})
	})

	Describe("Cancel work", func() {
		It("should cancel work via future.Stop()", func() {
			s = scheduler.NewScheduler[string](1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context) (string, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return "", ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			future := s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			future.Stop()

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})

		It("should cancel work when scheduler is closed", func() {
			s = scheduler.NewScheduler[string](1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context) (string, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return "", ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})
	})
})
