package sqlite_test

import (
	"context"
	"testing"

	sessionSqlite "github.com/frahmantamala/star-supla/internal/session/sqlite"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSessionSqlite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session SQLite Suite")
}

var _ = Describe("Session SQLite Repository", func() {
	var (
		ctx  context.Context
		repo *sessionSqlite.SessionRepository
	)

	BeforeEach(func() {
		ctx = context.Background()

		// Use SQLite in-memory database for testing
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		repo, err = sessionSqlite.NewSessionRepository(db)
		Expect(err).NotTo(HaveOccurred())

		DeferCleanup(repo.Close)
	})

	It("should return not found for a missing key", func() {
		_, ok, err := repo.Get(ctx, "sessionKey")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should insert then overwrite a value", func() {
		Expect(repo.Set(ctx, "sessionKey", "first")).To(Succeed())
		Expect(repo.Set(ctx, "sessionKey", "second")).To(Succeed())

		v, ok, err := repo.Get(ctx, "sessionKey")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("second"))
	})

	It("should delete one key", func() {
		Expect(repo.Set(ctx, "sessionKey", "t")).To(Succeed())
		Expect(repo.Set(ctx, "roles", "{}")).To(Succeed())

		Expect(repo.Delete(ctx, "sessionKey")).To(Succeed())

		_, ok, _ := repo.Get(ctx, "sessionKey")
		Expect(ok).To(BeFalse())
		_, ok, _ = repo.Get(ctx, "roles")
		Expect(ok).To(BeTrue())
	})

	It("should clear all keys", func() {
		Expect(repo.Set(ctx, "sessionKey", "t")).To(Succeed())
		Expect(repo.Set(ctx, "me", "{}")).To(Succeed())

		Expect(repo.Clear(ctx)).To(Succeed())

		_, ok, _ := repo.Get(ctx, "sessionKey")
		Expect(ok).To(BeFalse())
		_, ok, _ = repo.Get(ctx, "me")
		Expect(ok).To(BeFalse())
	})
})
