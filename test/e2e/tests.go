package main

import (
	"context"
	"strings"
	"time"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/engine"
	"github.com/conveyor-ci/conveyor/internal/pipeline"
	"github.com/conveyor-ci/conveyor/internal/report"
	perrors "github.com/conveyor-ci/conveyor/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newPipeline(ctx context.Context) (*pipeline.Pipeline, pipeline.SourceTree) {
	conf, err := config.Load("")
	Expect(err).NotTo(HaveOccurred())
	conf.Engine.Socket = cfg.PodmanSocket

	eng, err := engine.New(ctx, conf.Engine.Socket)
	Expect(err).NotTo(HaveOccurred())

	return pipeline.New(eng, conf), pipeline.SourceTree{Dir: cfg.SourceDir}
}

var _ = Describe("Version matrix", Ordered, func() {
	var (
		ctx context.Context
		p   *pipeline.Pipeline
		src pipeline.SourceTree
	)

	BeforeAll(func() {
		ctx = context.Background()
		p, src = newPipeline(ctx)
	})

	AfterAll(func() {
		p.Close(ctx)
	})

	It("runs the unit suite on every version and aggregates in input order", func() {
		versions, err := pipeline.ParseVersions(cfg.Versions)
		Expect(err).NotTo(HaveOccurred())

		result := p.RunMatrix(ctx, src, versions)
		Expect(result).To(HaveLen(len(versions)))
		for i, branch := range result {
			Expect(branch.Version).To(Equal(versions[i]))
			Expect(branch.Err).NotTo(HaveOccurred())
			Expect(branch.Output).To(ContainSubstring("passed"))
		}

		rendered := report.FormatMatrix(result)
		Expect(rendered).To(ContainSubstring("=== MULTI-VERSION TEST RESULTS ==="))
		for _, v := range versions {
			Expect(rendered).To(ContainSubstring("Python " + v + ": PASSED"))
		}
	})

	It("contains a broken version without aborting the healthy ones", func() {
		result := p.RunMatrix(ctx, src, []string{"3.10", "bad-version"})
		Expect(result).To(HaveLen(2))
		Expect(result.Failed()).To(BeTrue())

		Expect(result[0].Version).To(Equal("3.10"))
		Expect(result[0].Err).NotTo(HaveOccurred())

		Expect(result[1].Version).To(Equal("bad-version"))
		Expect(perrors.IsMatrixBranchFailedError(result[1].Err)).To(BeTrue())

		rendered := report.FormatMatrix(result)
		Expect(rendered).To(ContainSubstring("Python 3.10: PASSED"))
		Expect(rendered).To(ContainSubstring("Python bad-version: FAILED"))
	})
})

var _ = Describe("Service probing", Ordered, func() {
	var (
		ctx context.Context
		p   *pipeline.Pipeline
		src pipeline.SourceTree
	)

	BeforeAll(func() {
		ctx = context.Background()
		p, src = newPipeline(ctx)
	})

	AfterAll(func() {
		p.Close(ctx)
	})

	It("probes the running service over the shared network", func() {
		responses, err := p.ProbeService(ctx, src, "3.12")
		Expect(err).NotTo(HaveOccurred())
		Expect(responses).To(HaveLen(2))

		Expect(responses[0].Path).To(Equal("/"))
		Expect(responses[0].Body).To(MatchJSON(`{"message": "Hello, World!"}`))
		Expect(responses[1].Path).To(Equal("/health"))
		Expect(responses[1].Body).To(MatchJSON(`{"status": "healthy", "service": "hello-world"}`))

		rendered := report.FormatProbe(responses)
		Expect(rendered).To(ContainSubstring("=== API SERVICE TEST RESULTS ==="))
		Expect(rendered).To(ContainSubstring("All endpoints responded successfully!"))
	})

	It("answers 404 and 405 for requests outside the contract", func() {
		handle, err := p.StartService(ctx, p.NewService(src, "3.12"))
		Expect(err).NotTo(HaveOccurred())
		defer handle.Stop(ctx)

		binding, err := p.Bind(ctx, handle, "api")
		Expect(err).NotTo(HaveOccurred())
		defer binding.Release(ctx)

		probeEnv, err := p.ProbeEnvironment(ctx)
		Expect(err).NotTo(HaveOccurred())

		// Without the binding the alias must not resolve.
		_, _, err = p.RunCommands(ctx, probeEnv, [][]string{
			{"curl", "-sS", "--fail", "--max-time", "1", "http://api:8000/health"},
		})
		Expect(err).To(HaveOccurred())

		probeEnv = binding.Attach(probeEnv)

		Eventually(func() error {
			_, _, err := p.RunCommands(ctx, probeEnv, [][]string{
				{"curl", "-sS", "--fail", "--max-time", "1", "http://api:8000/health"},
			})
			return err
		}, 30*time.Second, time.Second).Should(Succeed())

		status, _, err := p.RunCommands(ctx, probeEnv, [][]string{
			{"curl", "-s", "-o", "/dev/null", "-w", "%{http_code}", "http://api:8000/missing"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(status)).To(Equal("404"))

		status, _, err = p.RunCommands(ctx, probeEnv, [][]string{
			{"curl", "-s", "-o", "/dev/null", "-w", "%{http_code}", "-X", "POST", "http://api:8000/"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(status)).To(Equal("405"))
	})

	It("delegates the e2e suite to pytest inside the pipeline", func() {
		output, err := p.IntegrationTest(ctx, src, "3.12")
		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(ContainSubstring("passed"))
	})
})
