package role_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/star-supla/internal"
	pageDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/page"
	roleDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/role"
	"github.com/frahmantamala/star-supla/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRoleService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Service Suite")
}

// MockRepository implements role.RepositoryAPI for testing
type MockRepository struct {
	roles      []roleDatamodel.Role
	written    []interface{}
	deleted    []string
	shouldFail bool
}

func (m *MockRepository) All(context.Context) ([]roleDatamodel.Role, error) {
	if m.shouldFail {
		return nil, errors.New("backend down")
	}
	return m.roles, nil
}

func (m *MockRepository) Create(_ context.Context, body interface{}) (string, error) {
	if m.shouldFail {
		return "", errors.New("backend down")
	}
	m.written = append(m.written, body)
	return "new-id", nil
}

func (m *MockRepository) Update(_ context.Context, body interface{}) error {
	m.written = append(m.written, body)
	return nil
}

func (m *MockRepository) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

var _ = Describe("Role Service", func() {
	var (
		ctx     context.Context
		repo    *MockRepository
		service *role.Service
		pages   []pageDatamodel.Page
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &MockRepository{
			roles: []roleDatamodel.Role{{ID: "r1", Name: "Yönetici"}, {ID: "r2", Name: "Mükellef"}},
		}
		service = role.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
		pages = []pageDatamodel.Page{{ID: "p1", Name: "Mükellefler"}, {ID: "p2", Name: "Roller"}}
	})

	Describe("page lists", func() {
		It("should start with every capability off", func() {
			list := role.NewPageList(pages)
			Expect(list).To(Equal([]role.PagePermission{
				{PageID: "p1", PageName: "Mükellefler"},
				{PageID: "p2", PageName: "Roller"},
			}))
		})

		It("should grant actions by page name ignoring case", func() {
			list := role.NewPageList(pages)

			matched, err := role.Grant(list, "roller", "view", "DELETE")
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(BeTrue())
			Expect(list[1].View).To(BeTrue())
			Expect(list[1].Delete).To(BeTrue())
			Expect(list[1].Insert).To(BeFalse())
			Expect(list[0].View).To(BeFalse())
		})

		It("should report unknown pages and actions", func() {
			list := role.NewPageList(pages)

			matched, err := role.Grant(list, "Ürünler", "view")
			Expect(err).NotTo(HaveOccurred())
			Expect(matched).To(BeFalse())

			_, err = role.Grant(list, "Roller", "approve")
			Expect(internal.IsValidation(err)).To(BeTrue())
		})
	})

	Describe("Create", func() {
		It("should send the role with its page list", func() {
			r := role.Role{ID: "ignored", Name: "Editör", PageList: role.NewPageList(pages)}

			id, err := service.Create(ctx, r)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("new-id"))

			sent := repo.written[0].(role.Role)
			Expect(sent.ID).To(BeEmpty())
			Expect(sent.PageList).To(HaveLen(2))
		})

		It("should reject a page listed twice", func() {
			r := role.Role{Name: "Editör", PageList: []role.PagePermission{{PageID: "p1"}, {PageID: "p1", View: true}}}

			_, err := service.Create(ctx, r)
			Expect(internal.IsValidation(err)).To(BeTrue())
			Expect(repo.written).To(BeEmpty())
		})

		It("should require a name", func() {
			_, err := service.Create(ctx, role.Role{})
			Expect(internal.IsValidation(err)).To(BeTrue())
		})
	})

	Describe("lookups and removal", func() {
		It("should find a role by id", func() {
			r, err := service.GetByID(ctx, "r2")
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Name).To(Equal("Mükellef"))

			_, err = service.GetByID(ctx, "nope")
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})

		It("should propagate listing failures", func() {
			repo.shouldFail = true
			_, err := service.GetAll(ctx)
			Expect(err).To(MatchError("backend down"))
		})

		It("should require an id to update and delete", func() {
			Expect(internal.IsValidation(service.Update(ctx, role.Role{Name: "x"}))).To(BeTrue())
			Expect(internal.IsValidation(service.Delete(ctx, ""))).To(BeTrue())

			Expect(service.Delete(ctx, "r1")).To(Succeed())
			Expect(repo.deleted).To(Equal([]string{"r1"}))
		})
	})
})
