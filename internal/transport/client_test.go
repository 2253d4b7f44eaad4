package transport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/apitest"
	"github.com/frahmantamala/star-supla/internal/core/events"
	"github.com/frahmantamala/star-supla/internal/session"
	"github.com/frahmantamala/star-supla/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

// countingPublisher records forced logout announcements.
type countingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *countingPublisher) PublishSync(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var _ = Describe("Envelope Client", func() {
	var (
		ctx       context.Context
		server    *apitest.Server
		cache     *session.Cache
		publisher *countingPublisher
		client    *transport.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = apitest.NewServer()
		DeferCleanup(server.Close)

		cache = session.NewCache(session.NewMemoryStore())
		publisher = &countingPublisher{}
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		client = transport.NewClient(server.Config(), cache, publisher, lg)
	})

	Describe("BuildHeaders", func() {
		It("should omit the session key when none is stored", func() {
			headers, err := client.BuildHeaders(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveKeyWithValue("Content-Type", "application/json"))
			Expect(headers).To(HaveKeyWithValue("x-ProjectId", apitest.ProjectID))
			Expect(headers).NotTo(HaveKey("x-SessionKey"))
		})

		It("should include the exact stored session key", func() {
			Expect(cache.SetSessionKey(ctx, "tok-123")).To(Succeed())

			headers, err := client.BuildHeaders(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).To(HaveKeyWithValue("x-SessionKey", "tok-123"))
		})

		It("should drop the content type for multipart bodies", func() {
			headers, err := client.BuildHeaders(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(headers).NotTo(HaveKey("Content-Type"))
			Expect(headers).To(HaveKey("x-ProjectId"))
		})

		It("should send the headers on the wire", func() {
			server.IssueSession("tok-123", "admin")
			Expect(cache.SetSessionKey(ctx, "tok-123")).To(Succeed())

			_, err := client.Do(ctx, transport.Request{Method: http.MethodGet, Path: "Me"})
			Expect(err).NotTo(HaveOccurred())

			recorded := server.RequestsTo(http.MethodGet, "Me")
			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Header.Get("x-SessionKey")).To(Equal("tok-123"))
			Expect(recorded[0].Header.Get("x-ProjectId")).To(Equal(apitest.ProjectID))
			Expect(recorded[0].Header.Get("X-Trace-ID")).NotTo(BeEmpty())
		})
	})

	Describe("Unwrap", func() {
		It("should return a 2xx envelope unchanged", func() {
			env, err := client.Unwrap(ctx, http.StatusOK, []byte(`{"result":"abc","totalCount":3,"totalPage":1}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(env.Result)).To(Equal(`"abc"`))
			Expect(*env.TotalCount).To(Equal(3))
			Expect(*env.TotalPage).To(Equal(1))
		})

		It("should keep a bare array body as raw", func() {
			env, err := client.Unwrap(ctx, http.StatusOK, []byte(`[{"id":"1"}]`))
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Result).To(BeEmpty())
			Expect(env.Raw).To(MatchJSON(`[{"id":"1"}]`))
		})

		It("should fail with a parse error on malformed bodies before classifying", func() {
			_, err := client.Unwrap(ctx, http.StatusForbidden, []byte(`<html>nope</html>`))
			Expect(internal.IsParseError(err)).To(BeTrue())
			Expect(publisher.count()).To(Equal(0))

			_, err = client.Unwrap(ctx, http.StatusOK, []byte(``))
			Expect(internal.IsParseError(err)).To(BeTrue())
		})

		It("should publish one forced logout and classify 403 as forbidden", func() {
			_, err := client.Unwrap(ctx, http.StatusForbidden, []byte(`{}`))
			Expect(internal.IsForbidden(err)).To(BeTrue())
			Expect(err.Error()).To(Equal(internal.MessageForbidden))
			Expect(publisher.count()).To(Equal(1))
		})

		It("should classify 401 as unauthorized without logging out", func() {
			_, err := client.Unwrap(ctx, http.StatusUnauthorized, []byte(`{"message":"expired"}`))
			Expect(internal.IsUnauthorized(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("expired"))
			Expect(publisher.count()).To(Equal(0))

			_, err = client.Unwrap(ctx, http.StatusUnauthorized, []byte(`{}`))
			Expect(err.Error()).To(Equal(internal.MessageUnauthorized))
		})

		It("should classify other statuses as api errors carrying the status", func() {
			_, err := client.Unwrap(ctx, http.StatusInternalServerError, []byte(`{}`))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeAPI))
			Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(appErr.Message).To(Equal(internal.MessageDefault))
		})
	})

	Describe("Do", func() {
		BeforeEach(func() {
			server.IssueSession("tok", "admin")
			Expect(cache.SetSessionKey(ctx, "tok")).To(Succeed())
		})

		It("should announce a 403 from any endpoint exactly once", func() {
			server.FailWith(http.MethodGet, "Obj/Products", http.StatusForbidden, "Yetkiniz yok")

			_, err := client.Do(ctx, transport.Request{Method: http.MethodGet, Path: "Obj/Products"})
			Expect(internal.IsForbidden(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("Yetkiniz yok"))
			Expect(publisher.count()).To(Equal(1))

			forbidden, ok := publisher.events[0].(events.SessionForbidden)
			Expect(ok).To(BeTrue())
			Expect(forbidden.Method).To(Equal(http.MethodGet))
			Expect(forbidden.Path).To(Equal("Obj/Products"))
		})

		It("should not log out on 401", func() {
			server.FailWith(http.MethodGet, "User", http.StatusUnauthorized, "")

			_, err := client.Do(ctx, transport.Request{Method: http.MethodGet, Path: "User"})
			Expect(internal.IsUnauthorized(err)).To(BeTrue())
			Expect(publisher.count()).To(Equal(0))
		})

		It("should send a body with DELETE", func() {
			server.SeedCollection("Page", apitest.Document{"id": "p1", "name": "Roller"})

			_, err := client.Do(ctx, transport.Request{
				Method: http.MethodDelete,
				Path:   "Page",
				Body:   map[string]string{"id": "p1"},
			})
			Expect(err).NotTo(HaveOccurred())

			recorded := server.RequestsTo(http.MethodDelete, "Page")
			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Body).To(MatchJSON(`{"id":"p1"}`))
			Expect(server.Collection("Page")).To(BeEmpty())
		})

		It("should surface network failures as network errors", func() {
			server.Close()

			_, err := client.Do(ctx, transport.Request{Method: http.MethodGet, Path: "Me"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNetwork))
		})
	})

	Describe("Upload", func() {
		It("should send multipart without the JSON content type", func() {
			server.IssueSession("tok", "admin")
			Expect(cache.SetSessionKey(ctx, "tok")).To(Succeed())

			env, err := client.Upload(ctx, transport.Upload{
				Path:     "Obj/Upload/Products",
				FileName: "chair.png",
				File:     strings.NewReader("png-bytes"),
				Fields:   map[string]string{"isResize": "true"},
			})
			Expect(err).NotTo(HaveOccurred())

			var url string
			Expect(env.Decode(&url)).To(Succeed())
			Expect(url).To(Equal("https://cdn.test/Products/resized/chair.png"))

			recorded := server.RequestsTo(http.MethodPost, "Obj/Upload/Products")
			Expect(recorded).To(HaveLen(1))
			Expect(recorded[0].Header.Get("Content-Type")).To(HavePrefix("multipart/form-data"))
		})
	})
})
