package wiring

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"lodestar/internal/config"
	"lodestar/internal/rag"
)

type specRetriever struct{ docs []rag.Document }

func (r *specRetriever) Retrieve(context.Context, string, int, int) ([]rag.Document, error) {
	return r.docs, nil
}

type specGenerator struct{}

func (g *specGenerator) Invoke(context.Context, []rag.Message) (string, error) {
	return "spec answer", nil
}

func (g *specGenerator) InvokeStructured(_ context.Context, _ []rag.Message, out any) error {
	switch v := out.(type) {
	case *rag.RelevanceGrade:
		v.BinaryScore = "yes"
	case *rag.ConfidenceScore:
		v.Confidence = 0.99
	case *rag.QuestionRewrite:
		v.Query = "rewritten"
	}
	return nil
}

type specSearcher struct{}

func (s *specSearcher) Search(context.Context, string) ([]string, error) {
	return []string{"snippet"}, nil
}

var _ = ginkgo.Describe("NewWorkflow", func() {
	var (
		retriever *specRetriever
		generator *specGenerator
		searcher  *specSearcher
	)

	ginkgo.BeforeEach(func() {
		retriever = &specRetriever{docs: []rag.Document{{Content: "doc"}}}
		generator = &specGenerator{}
		searcher = &specSearcher{}
	})

	ginkgo.It("builds and runs each variant end to end", func() {
		for _, variant := range []string{"basic", "suggestion", "search"} {
			cfg := config.Default().Workflow
			cfg.Variant = variant

			wf, err := NewWorkflow(cfg, retriever, generator, searcher)
			gomega.Expect(err).To(gomega.Succeed(), variant)

			res, err := wf.Execute(context.Background(), "what is lodestar?")
			gomega.Expect(err).To(gomega.Succeed(), variant)
			gomega.Expect(res.Answer).NotTo(gomega.BeEmpty(), variant)
		}
	})

	ginkgo.It("rejects the search variant without a searcher", func() {
		cfg := config.Default().Workflow
		_, err := NewWorkflow(cfg, retriever, generator, nil)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("rejects unknown variants", func() {
		cfg := config.Default().Workflow
		cfg.Variant = "turbo"
		_, err := NewWorkflow(cfg, retriever, generator, searcher)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
