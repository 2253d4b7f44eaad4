package reservation_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/apitest"
	reservationDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/reservation"
	"github.com/frahmantamala/star-supla/internal/object"
	"github.com/frahmantamala/star-supla/internal/product"
	"github.com/frahmantamala/star-supla/internal/reservation"
	"github.com/frahmantamala/star-supla/internal/session"
	"github.com/frahmantamala/star-supla/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// racingTable lets another booking land right after each create, the way
// a second operator would.
type racingTable struct {
	*object.Table[reservationDatamodel.Reservation]
	server *apitest.Server
	rival  apitest.Document
}

func (t *racingTable) Create(ctx context.Context, data reservationDatamodel.Reservation) (string, error) {
	id, err := t.Table.Create(ctx, data)
	if err == nil && t.rival != nil {
		t.server.Seed(reservation.Table, t.rival)
	}
	return id, err
}

var _ = Describe("Reservation Service", func() {
	const date = "2024-05-06"

	var (
		ctx     context.Context
		server  *apitest.Server
		table   *racingTable
		service *reservation.Service
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
		products := product.NewService(object.NewTable[product.Product](api, product.Table), lg)
		table = &racingTable{
			Table:  object.NewTable[reservationDatamodel.Reservation](api, reservation.Table),
			server: server,
		}
		service = reservation.NewService(table, products, lg)

		server.Seed(product.Table, apitest.Document{"id": "p1", "name": "Sandalye", "stock": 10, "isActive": true})
		server.Seed(reservation.Table,
			apitest.Document{"_id": apitest.Document{"$oid": "r1"}, "date": date, "userId": "u1", "productId": "p1", "quantity": 4},
			apitest.Document{"_id": apitest.Document{"$oid": "r2"}, "date": "2024-05-01", "userId": "u2", "productId": "p1", "quantity": 9},
			apitest.Document{"_id": apitest.Document{"$oid": "r3"}, "date": date, "userId": "u2", "productId": "p1", "quantity": 3},
		)
	})

	Describe("listing", func() {
		It("should sort by date and omit an empty query", func() {
			items, err := service.GetAll(ctx, reservation.Filters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(3))
			Expect(items[0].ID).To(Equal("r2"))

			recorded := server.RequestsTo(http.MethodGet, "Obj/Reservations")
			Expect(recorded[0].Query).NotTo(HaveKey("query"))
			Expect(recorded[0].Query.Get("sort")).To(MatchJSON(`{"date":1}`))
		})

		It("should filter by user", func() {
			items, err := service.GetAll(ctx, reservation.Filters{UserID: "u2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
		})

		It("should query an inclusive date range", func() {
			items, err := service.GetByDateRange(ctx, "2024-05-01", date)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(3))

			items, err = service.GetByDateRange(ctx, "2024-05-02", "2024-05-05")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())

			recorded := server.RequestsTo(http.MethodGet, "Obj/Reservations")
			Expect(recorded[0].Query.Get("query")).To(MatchJSON(`{"date":{"$gte":"2024-05-01","$lte":"2024-05-06"}}`))
		})

		It("should reject a reversed or malformed range", func() {
			_, err := service.GetByDateRange(ctx, "2024-05-06", "2024-05-01")
			Expect(internal.IsValidation(err)).To(BeTrue())
			_, err = service.GetByDateRange(ctx, "06.05.2024", "2024-05-07")
			Expect(internal.IsValidation(err)).To(BeTrue())
		})
	})

	Describe("Availability", func() {
		It("should subtract the day's reservations from stock", func() {
			a, err := service.Availability(ctx, date, "p1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(*a).To(Equal(reservation.Availability{ProductID: "p1", Date: date, Stock: 10, Reserved: 7, Available: 3}))
		})

		It("should leave out the reservation being edited", func() {
			a, err := service.Availability(ctx, date, "p1", "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Reserved).To(Equal(3))
			Expect(a.Available).To(Equal(7))
		})
	})

	Describe("Book", func() {
		It("should accept exactly the remaining stock", func() {
			id, err := service.Book(ctx, reservation.Reservation{Date: date, UserID: "u3", ProductID: "p1", Quantity: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())
			Expect(server.Table(reservation.Table)).To(HaveLen(4))
		})

		It("should reject one unit more than the remaining stock", func() {
			_, err := service.Book(ctx, reservation.Reservation{Date: date, UserID: "u3", ProductID: "p1", Quantity: 4})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Error()).To(ContainSubstring("only 3 units"))
			Expect(server.RequestsTo(http.MethodPost, "Obj/Reservations")).To(BeEmpty())
		})

		It("should reject a non positive quantity", func() {
			_, err := service.Book(ctx, reservation.Reservation{Date: date, UserID: "u3", ProductID: "p1"})
			Expect(internal.IsValidation(err)).To(BeTrue())
		})

		It("should withdraw a booking overtaken by a concurrent one", func() {
			table.rival = apitest.Document{"_id": apitest.Document{"$oid": "rival"}, "date": date, "userId": "u9", "productId": "p1", "quantity": 2}

			_, err := service.Book(ctx, reservation.Reservation{Date: date, UserID: "u3", ProductID: "p1", Quantity: 3})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientStock))

			remaining := reservation.Reserved(mustList(ctx, service), date, "p1", "")
			Expect(remaining).To(Equal(9))
		})
	})

	Describe("Rebook", func() {
		It("should count everything but the edited reservation", func() {
			Expect(service.Rebook(ctx, reservation.Reservation{ID: "r1", Date: date, UserID: "u1", ProductID: "p1", Quantity: 7})).To(Succeed())

			_, err := service.Availability(ctx, date, "p1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Rebook(ctx, reservation.Reservation{ID: "r1", Date: date, UserID: "u1", ProductID: "p1", Quantity: 8})).NotTo(Succeed())
		})

		It("should fail for an unknown reservation", func() {
			err := service.Rebook(ctx, reservation.Reservation{ID: "nope", Date: date, UserID: "u1", ProductID: "p1", Quantity: 1})
			Expect(err).To(MatchError(internal.ErrReservationNotFound))
		})
	})

	It("should delete by id", func() {
		Expect(service.Delete(ctx, "r2")).To(Succeed())
		Expect(server.Table(reservation.Table)).To(HaveLen(2))
	})
})

func mustList(ctx context.Context, s *reservation.Service) []reservation.Reservation {
	items, err := s.GetAll(ctx, reservation.Filters{})
	Expect(err).NotTo(HaveOccurred())
	return items
}
