package pipeline_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/pipeline"
	perrors "github.com/conveyor-ci/conveyor/pkg/errors"
)

var _ = Describe("ParseVersions", func() {
	It("should split and trim a comma-delimited list", func() {
		versions, err := pipeline.ParseVersions("3.10, 3.11 ,3.12")

		Expect(err).NotTo(HaveOccurred())
		Expect(versions).To(Equal([]string{"3.10", "3.11", "3.12"}))
	})

	It("should accept a single version", func() {
		versions, err := pipeline.ParseVersions("3.12")

		Expect(err).NotTo(HaveOccurred())
		Expect(versions).To(Equal([]string{"3.12"}))
	})

	It("should reject empty entries", func() {
		_, err := pipeline.ParseVersions("3.10,,3.12")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("empty entry"))
	})

	It("should reject an empty list", func() {
		for _, list := range []string{"", "  "} {
			_, err := pipeline.ParseVersions(list)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("version list is empty"))
		}
	})
})

var _ = Describe("Version matrix runner", func() {
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

	It("should produce one outcome per version in input order", func() {
		result := p.RunMatrix(ctx, src, []string{"3.10", "3.11", "3.12"})

		Expect(result).To(HaveLen(3))
		Expect(result[0].Version).To(Equal("3.10"))
		Expect(result[1].Version).To(Equal("3.11"))
		Expect(result[2].Version).To(Equal("3.12"))
		for _, outcome := range result {
			Expect(outcome.Passed()).To(BeTrue())
		}
	})

	// Given an artificially slow first version and a fast second version
	// When the matrix runs both concurrently
	// Then the fast branch completes first but the slow branch's outcome
	// still appears first in the result
	It("should aggregate by input order regardless of completion order", func() {
		var (
			mu        sync.Mutex
			completed []string
		)
		rt.onRun = func(spec pipeline.ContainerSpec) (pipeline.CommandResult, error, bool) {
			version := "fast"
			if strings.Contains(spec.Image, "slow") {
				version = "slow"
				time.Sleep(300 * time.Millisecond)
			}
			if spec.Command[0] == "pytest" {
				mu.Lock()
				completed = append(completed, version)
				mu.Unlock()
			}
			out := fmt.Sprintf("output from %s", version)
			return pipeline.CommandResult{Stdout: out, Combined: out}, nil, true
		}

		result := p.RunMatrix(ctx, src, []string{"slow", "fast"})

		mu.Lock()
		defer mu.Unlock()
		Expect(completed[0]).To(Equal("fast"))

		Expect(result).To(HaveLen(2))
		Expect(result[0].Version).To(Equal("slow"))
		Expect(result[0].Output).To(Equal("output from slow"))
		Expect(result[1].Version).To(Equal("fast"))
	})

	// Given a version whose base image cannot be resolved
	// When the matrix runs
	// Then that branch is a contained failure and the others are untouched
	It("should contain branch failures without cancelling siblings", func() {
		rt.ensureImageErr = func(ref string) error {
			if strings.Contains(ref, "bad-version") {
				return fmt.Errorf("image not found: %s", ref)
			}
			return nil
		}

		result := p.RunMatrix(ctx, src, []string{"3.10", "bad-version"})

		Expect(result).To(HaveLen(2))
		Expect(result[0].Passed()).To(BeTrue())
		Expect(result[1].Passed()).To(BeFalse())
		Expect(perrors.IsMatrixBranchFailedError(result[1].Err)).To(BeTrue())
		Expect(result[1].Err.Error()).To(ContainSubstring("image not found"))
	})

	It("should never fail the matrix call itself", func() {
		rt.ensureImageErr = func(ref string) error {
			return fmt.Errorf("registry down")
		}

		result := p.RunMatrix(ctx, src, []string{"3.10", "3.11"})

		Expect(result).To(HaveLen(2))
		for _, outcome := range result {
			Expect(outcome.Passed()).To(BeFalse())
			Expect(perrors.IsMatrixBranchFailedError(outcome.Err)).To(BeTrue())
		}
	})
})
