package pipeline_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/pipeline"
	perrors "github.com/conveyor-ci/conveyor/pkg/errors"
)

var _ = Describe("Integration orchestrator", func() {
	var (
		ctx context.Context
		rt  *fakeRuntime
		p   *pipeline.Pipeline
		src pipeline.SourceTree
	)

	BeforeEach(func() {
		ctx = context.Background()
		rt = newFakeRuntime()

		cfg, err := config.Load("")
		Expect(err).NotTo(HaveOccurred())
		p = pipeline.New(rt, cfg)
		src = pipeline.SourceTree{Dir: "/tmp/project"}
	})

	Describe("Direct HTTP probe", func() {
		It("should capture both endpoint bodies", func() {
			responses, err := p.ProbeService(ctx, src, "3.12")

			Expect(err).NotTo(HaveOccurred())
			Expect(responses).To(HaveLen(2))
			Expect(responses[0].Path).To(Equal("/"))
			Expect(responses[0].Body).To(MatchJSON(`{"message": "Hello, World!"}`))
			Expect(responses[1].Path).To(Equal("/health"))
			Expect(responses[1].Body).To(MatchJSON(`{"status": "healthy", "service": "hello-world"}`))
		})

		It("should probe with the fixed per-request timeout", func() {
			_, err := p.ProbeService(ctx, src, "3.12")
			Expect(err).NotTo(HaveOccurred())

			for _, run := range rt.Runs() {
				if run.Command[0] != "curl" {
					continue
				}
				Expect(run.Command).To(ContainElement("--max-time"))
				Expect(run.Command).To(ContainElement("1"))
				Expect(run.Command).To(ContainElement("--fail"))
			}
		})

		It("should address the service by its alias only", func() {
			_, err := p.ProbeService(ctx, src, "3.12")
			Expect(err).NotTo(HaveOccurred())

			var curls [][]string
			for _, run := range rt.Runs() {
				if run.Command[0] == "curl" {
					curls = append(curls, run.Command)
					// Every probe runs inside the binding network.
					Expect(run.Networks).To(HaveLen(1))
				}
			}
			Expect(curls).NotTo(BeEmpty())
			for _, cmd := range curls {
				Expect(cmd[len(cmd)-1]).To(HavePrefix("http://api:8000/"))
			}
		})

		// Given a service whose root endpoint returns a failure
		// When the probe runs
		// Then it fails with ProbeFailedError and still tears everything down
		It("should fail fast and tear down on a failing endpoint", func() {
			rt.onRun = func(spec pipeline.ContainerSpec) (pipeline.CommandResult, error, bool) {
				cmd := spec.Command
				if cmd[0] == "curl" && cmd[len(cmd)-1] == "http://api:8000/" {
					return pipeline.CommandResult{
						ExitCode: 22,
						Combined: "curl: (22) The requested URL returned error: 500",
					}, nil, true
				}
				return pipeline.CommandResult{}, nil, false
			}

			_, err := p.ProbeService(ctx, src, "3.12")

			Expect(err).To(HaveOccurred())
			Expect(perrors.IsProbeFailedError(err)).To(BeTrue())

			// Service stopped and binding network removed on the failure path.
			Expect(rt.Stopped()).To(HaveLen(1))
			Expect(rt.RemovedNetworks()).To(HaveLen(1))
		})

		It("should tear down all transient resources on success", func() {
			_, err := p.ProbeService(ctx, src, "3.12")
			Expect(err).NotTo(HaveOccurred())

			Expect(rt.Stopped()).To(HaveLen(1))
			Expect(rt.RemovedNetworks()).To(HaveLen(1))
		})
	})

	Describe("Delegated integration tests", func() {
		It("should inject the service base URL and run the e2e target", func() {
			out, err := p.IntegrationTest(ctx, src, "3.12")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("pytest tests/e2e -v --tb=short"))

			var testRuns []pipeline.ContainerSpec
			for _, run := range rt.Runs() {
				if run.Command[0] == "pytest" {
					testRuns = append(testRuns, run)
				}
			}
			Expect(testRuns).To(HaveLen(1))
			Expect(testRuns[0].Env).To(HaveKeyWithValue("API_BASE_URL", "http://api:8000"))
			Expect(testRuns[0].Networks).To(HaveLen(1))
		})

		It("should release the service and binding afterwards", func() {
			_, err := p.IntegrationTest(ctx, src, "3.12")
			Expect(err).NotTo(HaveOccurred())

			Expect(rt.Stopped()).To(HaveLen(1))
			Expect(rt.RemovedNetworks()).To(HaveLen(1))
		})
	})
})
