package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	roleDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/role"
	"github.com/frahmantamala/star-supla/internal/dashboard"
	"github.com/frahmantamala/star-supla/internal/page"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/frahmantamala/star-supla/internal/role"
	"github.com/frahmantamala/star-supla/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

type stubUsers struct {
	calls atomic.Int32
	err   error
}

func (s *stubUsers) GetAll(context.Context) ([]user.User, error) {
	s.calls.Add(1)
	return []user.User{{ID: "1"}, {ID: "2"}, {ID: "3"}}, s.err
}

type stubPages struct{ calls atomic.Int32 }

func (s *stubPages) GetAll(context.Context) ([]page.Page, error) {
	s.calls.Add(1)
	return []page.Page{{ID: "p1"}, {ID: "p2"}}, nil
}

type stubRoles struct{ calls atomic.Int32 }

func (s *stubRoles) GetAll(context.Context) ([]role.Role, error) {
	s.calls.Add(1)
	return []role.Role{{ID: "r1"}}, nil
}

var _ = Describe("Stats", func() {
	var (
		ctx       context.Context
		users     *stubUsers
		pages     *stubPages
		roles     *stubRoles
		evaluator *permission.Evaluator
		service   *dashboard.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		users, pages, roles = &stubUsers{}, &stubPages{}, &stubRoles{}
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		evaluator = permission.NewEvaluator(lg)
		service = dashboard.NewService(users, pages, roles, evaluator, lg)
	})

	It("should count everything for a superadmin", func() {
		evaluator.Replace(permission.SuperAdmin{})

		stats, err := service.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(*stats).To(Equal(dashboard.Stats{Users: 3, Pages: 2, Roles: 1, CanView: true}))
	})

	It("should only fetch sections the operator may view", func() {
		evaluator.Replace(permission.Scoped{Pages: []roleDatamodel.PagePermission{
			{PageID: "a", PageName: "mükellefler", View: true},
			{PageID: "b", PageName: "Roller", View: false, Delete: true},
		}})

		stats, err := service.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(*stats).To(Equal(dashboard.Stats{Users: 3, CanView: true}))
		Expect(pages.calls.Load()).To(BeZero())
		Expect(roles.calls.Load()).To(BeZero())
	})

	It("should fetch nothing without any view permission", func() {
		stats, err := service.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.CanView).To(BeFalse())
		Expect(users.calls.Load()).To(BeZero())
	})

	It("should fail when a permitted fetch fails", func() {
		evaluator.Replace(permission.SuperAdmin{})
		users.err = errors.New("backend down")

		_, err := service.Stats(ctx)
		Expect(err).To(MatchError("backend down"))
	})
})
