package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/reservation"
	"github.com/spf13/cobra"
)

var (
	reservationDate      string
	reservationUserID    string
	reservationProductID string
	reservationQuantity  int
	calendarView         string
)

var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Manage product reservations",
}

var reservationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reservations, optionally filtered",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		items, err := deps.Reservations.GetAll(ctx, reservation.Filters{
			Date:      reservationDate,
			UserID:    reservationUserID,
			ProductID: reservationProductID,
		})
		if err != nil {
			return err
		}
		return renderReservations(items)
	}),
}

var reservationsRangeCmd = &cobra.Command{
	Use:   "range <start> <end>",
	Short: "List reservations between two dates, inclusive",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		items, err := deps.Reservations.GetByDateRange(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return renderReservations(items)
	}),
}

var reservationsCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show reserved quantities per day",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		view, err := reservation.ParseView(calendarView)
		if err != nil {
			return err
		}
		day := time.Now()
		if reservationDate != "" {
			if day, err = reservation.ParseDate(reservationDate); err != nil {
				return err
			}
		}

		start, end := reservation.CalendarRange(view, day)
		items, err := deps.Reservations.GetByDateRange(ctx, reservation.FormatDate(start), reservation.FormatDate(end))
		if err != nil {
			return err
		}
		byDay := reservation.GroupByDay(items)

		type cell struct {
			Date         string                    `json:"date"`
			Weekday      string                    `json:"weekday"`
			Reservations []reservation.Reservation `json:"reservations"`
			Quantity     int                       `json:"quantity"`
		}
		var cells []cell
		var rows [][]string
		for _, d := range reservation.CalendarDays(view, day) {
			date := reservation.FormatDate(d)
			c := cell{Date: date, Weekday: d.Weekday().String(), Reservations: byDay[date]}
			for _, r := range c.Reservations {
				c.Quantity += r.Quantity
			}
			cells = append(cells, c)
			rows = append(rows, []string{c.Date, c.Weekday, strconv.Itoa(len(c.Reservations)), strconv.Itoa(c.Quantity)})
		}
		return render(cells, []string{"DATE", "DAY", "RESERVATIONS", "QUANTITY"}, rows)
	}),
}

var reservationsBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Reserve units of a product for a day",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		id, err := deps.Reservations.Book(ctx, reservation.Reservation{
			Date:      reservationDate,
			UserID:    reservationUserID,
			ProductID: reservationProductID,
			Quantity:  reservationQuantity,
		})
		if err != nil {
			return err
		}
		printf("Booked reservation %s\n", id)
		return nil
	}),
}

var reservationsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a reservation's day, product, user or quantity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
			items, err := deps.Reservations.GetAll(ctx, reservation.Filters{})
			if err != nil {
				return err
			}
			var r *reservation.Reservation
			for i := range items {
				if items[i].ID == args[0] {
					r = &items[i]
					break
				}
			}
			if r == nil {
				return internal.ErrReservationNotFound
			}

			flags := cmd.Flags()
			if flags.Changed("date") {
				r.Date = reservationDate
			}
			if flags.Changed("user") {
				r.UserID = reservationUserID
			}
			if flags.Changed("product") {
				r.ProductID = reservationProductID
			}
			if flags.Changed("quantity") {
				r.Quantity = reservationQuantity
			}

			if err := deps.Reservations.Rebook(ctx, *r); err != nil {
				return err
			}
			printf("Updated reservation %s\n", r.ID)
			return nil
		})(cmd, args)
	},
}

var reservationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a reservation",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := deps.Reservations.Delete(ctx, args[0]); err != nil {
			return err
		}
		printf("Deleted reservation %s\n", args[0])
		return nil
	}),
}

var reservationsAvailabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Show how many units of a product are free on a day",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		a, err := deps.Reservations.Availability(ctx, reservationDate, reservationProductID, "")
		if err != nil {
			return err
		}
		return render(a,
			[]string{"PRODUCT", "DATE", "STOCK", "RESERVED", "AVAILABLE"},
			[][]string{{a.ProductID, a.Date, strconv.Itoa(a.Stock), strconv.Itoa(a.Reserved), strconv.Itoa(a.Available)}},
		)
	}),
}

func renderReservations(items []reservation.Reservation) error {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{r.ID, r.Date, r.ProductID, r.UserID, strconv.Itoa(r.Quantity)})
	}
	return render(items, []string{"ID", "DATE", "PRODUCT", "USER", "QUANTITY"}, rows)
}

func init() {
	reservationsListCmd.Flags().StringVar(&reservationDate, "date", "", "day as YYYY-MM-DD")
	reservationsListCmd.Flags().StringVar(&reservationUserID, "user", "", "user id")
	reservationsListCmd.Flags().StringVar(&reservationProductID, "product", "", "product id")

	reservationsCalendarCmd.Flags().StringVar(&calendarView, "view", string(reservation.ViewMonth), "day, week or month")
	reservationsCalendarCmd.Flags().StringVar(&reservationDate, "date", "", "day inside the period, default today")

	for _, c := range []*cobra.Command{reservationsBookCmd, reservationsUpdateCmd} {
		c.Flags().StringVar(&reservationDate, "date", "", "day as YYYY-MM-DD")
		c.Flags().StringVar(&reservationUserID, "user", "", "user id")
		c.Flags().StringVar(&reservationProductID, "product", "", "product id")
		c.Flags().IntVar(&reservationQuantity, "quantity", 1, "units to reserve")
	}

	reservationsAvailabilityCmd.Flags().StringVar(&reservationDate, "date", "", "day as YYYY-MM-DD")
	reservationsAvailabilityCmd.Flags().StringVar(&reservationProductID, "product", "", "product id")
	_ = reservationsAvailabilityCmd.MarkFlagRequired("date")
	_ = reservationsAvailabilityCmd.MarkFlagRequired("product")

	reservationsCmd.AddCommand(
		reservationsListCmd,
		reservationsRangeCmd,
		reservationsCalendarCmd,
		reservationsBookCmd,
		reservationsUpdateCmd,
		reservationsDeleteCmd,
		reservationsAvailabilityCmd,
	)
}
