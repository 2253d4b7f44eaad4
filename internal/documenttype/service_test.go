package documenttype_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/apitest"
	"github.com/frahmantamala/star-supla/internal/documenttype"
	"github.com/frahmantamala/star-supla/internal/object"
	"github.com/frahmantamala/star-supla/internal/session"
	"github.com/frahmantamala/star-supla/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDocumentTypeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Type Service Suite")
}

var _ = Describe("Document Type Service", func() {
	var (
		ctx     context.Context
		server  *apitest.Server
		service *documenttype.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = apitest.NewServer()
		DeferCleanup(server.Close)

		server.IssueSession("tok", "admin")
		cache := session.NewCache(session.NewMemoryStore())
		Expect(cache.SetSessionKey(ctx, "tok")).To(Succeed())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		api := object.NewAPI(transport.NewClient(server.Config(), cache, nil, lg), lg)
		service = documenttype.NewService(object.NewTable[documenttype.DocumentType](api, documenttype.Table), lg)
	})

	It("should list by display order", func() {
		server.Seed(documenttype.Table,
			apitest.Document{"id": "d2", "name": "Fatura", "order": 2},
			apitest.Document{"id": "d1", "name": "Beyanname", "order": 1},
		)

		items, err := service.GetAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items[0].Name).To(Equal("Beyanname"))
		Expect(items[1].Name).To(Equal("Fatura"))

		recorded := server.RequestsTo(http.MethodGet, "Obj/DocumentTypes")
		Expect(recorded[0].Query.Get("sort")).To(MatchJSON(`{"order":1}`))
	})

	It("should create, update and delete", func() {
		id, err := service.Create(ctx, documenttype.DocumentType{Name: "Makbuz", IsActive: true, Order: 3})
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Update(ctx, documenttype.DocumentType{ID: id, Name: "Makbuz", Detail: "x", Order: 4})).To(Succeed())
		items, err := service.GetAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(Equal([]documenttype.DocumentType{{ID: id, Name: "Makbuz", Detail: "x", Order: 4}}))

		Expect(service.Delete(ctx, id)).To(Succeed())
		Expect(server.Table(documenttype.Table)).To(BeEmpty())
	})

	It("should reject a nameless or negatively ordered type", func() {
		_, err := service.Create(ctx, documenttype.DocumentType{Order: 1})
		Expect(internal.IsValidation(err)).To(BeTrue())
		_, err = service.Create(ctx, documenttype.DocumentType{Name: "x", Order: -1})
		Expect(internal.IsValidation(err)).To(BeTrue())
	})
})
