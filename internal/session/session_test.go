package session_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/frahmantamala/star-supla/internal/session"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var _ = Describe("Session Cache", func() {
	var (
		ctx   context.Context
		store *session.MemoryStore
		cache *session.Cache
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = session.NewMemoryStore()
		cache = session.NewCache(store)
	})

	It("should report an empty session key when nothing is stored", func() {
		token, err := cache.SessionKey(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(BeEmpty())
	})

	It("should store the session key under the shared key name", func() {
		Expect(cache.SetSessionKey(ctx, "abc")).To(Succeed())

		raw, ok, err := store.Get(ctx, session.KeySessionKey)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(raw).To(Equal("abc"))
	})

	It("should round trip the cached documents", func() {
		me := json.RawMessage(`{"id":"u1","name":"1234567890"}`)
		roles := json.RawMessage(`{"isSuperAdmin":true}`)
		Expect(cache.Persist(ctx, me, roles)).To(Succeed())

		gotMe, err := cache.Me(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotMe).To(MatchJSON(me))

		gotRoles, err := cache.Roles(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotRoles).To(MatchJSON(roles))
	})

	It("should remove everything on clear", func() {
		Expect(cache.SetSessionKey(ctx, "abc")).To(Succeed())
		Expect(cache.Persist(ctx, json.RawMessage(`{}`), json.RawMessage(`{}`))).To(Succeed())

		Expect(cache.Clear(ctx)).To(Succeed())

		token, _ := cache.SessionKey(ctx)
		Expect(token).To(BeEmpty())
		me, _ := cache.Me(ctx)
		Expect(me).To(BeNil())
		roles, _ := cache.Roles(ctx)
		Expect(roles).To(BeNil())
	})
})
