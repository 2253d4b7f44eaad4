package page_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/apitest"
	pageDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/page"
	"github.com/frahmantamala/star-supla/internal/object"
	"github.com/frahmantamala/star-supla/internal/page"
	"github.com/frahmantamala/star-supla/internal/session"
	"github.com/frahmantamala/star-supla/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPageService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Page Service Suite")
}

var _ = Describe("Page Service", func() {
	var (
		ctx     context.Context
		server  *apitest.Server
		service *page.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = apitest.NewServer()
		DeferCleanup(server.Close)

		server.IssueSession("tok", "admin")
		cache := session.NewCache(session.NewMemoryStore())
		Expect(cache.SetSessionKey(ctx, "tok")).To(Succeed())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		client := transport.NewClient(server.Config(), cache, nil, lg)
		service = page.NewService(object.NewCollection[pageDatamodel.Page](object.NewAPI(client, lg), page.Path), lg)
	})

	It("should create, list, update and delete pages", func() {
		id, err := service.Create(ctx, page.Page{Name: "Sayfalar", Detail: "Sayfa yönetimi"})
		Expect(err).NotTo(HaveOccurred())

		pages, err := service.GetAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(HaveLen(1))
		Expect(pages[0].ID).To(Equal(id))

		Expect(service.Update(ctx, page.Page{ID: id, Name: "Sayfalar", Detail: "x", IsCache: true})).To(Succeed())
		recorded := server.RequestsTo(http.MethodPut, "Page")
		Expect(recorded[0].Body).To(MatchJSON(`{"id":"` + id + `","name":"Sayfalar","detail":"x","isCache":true}`))

		Expect(service.Delete(ctx, id)).To(Succeed())
		Expect(server.Collection("Page")).To(BeEmpty())
	})

	It("should keep fields the server added out of updates", func() {
		server.SeedCollection("Page", apitest.Document{"id": "p1", "name": "Roller", "detail": "", "isCache": false, "order": 3})

		pages, err := service.GetAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(service.Update(ctx, pages[0])).To(Succeed())

		recorded := server.RequestsTo(http.MethodPut, "Page")
		Expect(recorded[0].Body).NotTo(ContainSubstring("order"))
	})

	It("should validate before sending", func() {
		_, err := service.Create(ctx, page.Page{})
		Expect(internal.IsValidation(err)).To(BeTrue())
		Expect(internal.IsValidation(service.Update(ctx, page.Page{Name: "x"}))).To(BeTrue())
		Expect(server.Requests()).To(BeEmpty())
	})

	It("should surface a server failure on update", func() {
		err := service.Update(ctx, page.Page{ID: "missing", Name: "x"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})
})
