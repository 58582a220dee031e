package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	promoDomain "github.com/stayhub/service-booking/internal/domain/promotion"
	roomDomain "github.com/stayhub/service-booking/internal/domain/room"
	"github.com/stayhub/service-booking/pkg/domain"
)

// cloneBooking snapshots an aggregate so stored state cannot alias live
// service-side mutations, matching row-based persistence.
func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(bookingDomain.ReconstituteArgs{
		ID:            b.ID(),
		UserID:        b.UserID(),
		HotelID:       b.HotelID(),
		RoomID:        b.RoomID(),
		CheckInDate:   b.CheckInDate(),
		CheckOutDate:  b.CheckOutDate(),
		TotalCents:    b.TotalCents(),
		Status:        b.Status(),
		PaymentMethod: b.PaymentMethod(),
		PaymentCents:  b.PaymentCents(),
		PaymentStatus: b.PaymentStatus(),
		TransactionID: b.TransactionID(),
		PaidAt:        b.PaidAt(),
		CancelledAt:   b.CancelledAt(),
		CancelReason:  b.CancelReason(),
		RefundCents:   b.RefundCents(),
		PromotionID:   b.PromotionID(),
		Fingerprint:   b.UsageFingerprint(),
		PromoUsedAt:   b.PromoUsedAt(),
		QRToken:       b.QRToken(),
		CheckInTime:   b.CheckInTime(),
		CheckOutTime:  b.CheckOutTime(),
		Version:       b.Version(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	})
}

// fakeBookingRepo is an in-memory booking repository with the same
// optimistic-locking contract as the GORM implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking

	failUpdate error // next Update returns this once
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
	}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.UserID() == userID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, hotelID *uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if hotelID == nil || b.HotelID() == *hotelID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failUpdate; err != nil {
		r.failUpdate = nil
		return err
	}
	stored, ok := r.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) CountPromotionUses(_ context.Context, promotionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookings {
		if b.PromotionID() != nil && *b.PromotionID() == promotionID && b.Status() != bookingDomain.StatusCancelled {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) CountPromotionUsesByComponent(_ context.Context, promotionID uuid.UUID, component promoDomain.Component, value string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookings {
		if b.PromotionID() == nil || *b.PromotionID() != promotionID || b.Status() == bookingDomain.StatusCancelled {
			continue
		}
		stored := b.UsageFingerprint().Component(component)
		if component == promoDomain.ComponentAccount {
			stored = b.UserID().String()
		}
		if stored != "" && stored == value {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) FindDueForSweep(_ context.Context, now time.Time) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		switch b.Status() {
		case bookingDomain.StatusConfirmed:
			if !b.CheckInDate().After(now) {
				out = append(out, cloneBooking(b))
			}
		case bookingDomain.StatusCheckedIn:
			if !b.CheckOutDate().After(now) {
				out = append(out, cloneBooking(b))
			}
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context, hotelID *uuid.UUID) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		if hotelID == nil || b.HotelID() == *hotelID {
			counts[string(b.Status())]++
		}
	}
	return counts, nil
}

// fakePromoRepo is an in-memory promotion repository.
type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[uuid.UUID]*promoDomain.Promotion
}

func newFakePromoRepo() *fakePromoRepo {
	return &fakePromoRepo{promos: make(map[uuid.UUID]*promoDomain.Promotion)}
}

func (r *fakePromoRepo) Save(_ context.Context, p *promoDomain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promos[p.ID()] = p
	return nil
}

func (r *fakePromoRepo) Update(_ context.Context, p *promoDomain.Promotion) error {
	return r.Save(context.Background(), p)
}

func (r *fakePromoRepo) FindByCode(_ context.Context, code string) (*promoDomain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.promos {
		if strings.EqualFold(p.Code(), code) {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Promotion", code)
}

func (r *fakePromoRepo) FindByID(_ context.Context, id uuid.UUID) (*promoDomain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[id]
	if !ok {
		return nil, domain.NewNotFoundError("Promotion", id.String())
	}
	return p, nil
}

func (r *fakePromoRepo) FindActive(_ context.Context) ([]*promoDomain.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*promoDomain.Promotion
	for _, p := range r.promos {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromoRepo) List(_ context.Context, _, _ int) ([]*promoDomain.Promotion, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*promoDomain.Promotion
	for _, p := range r.promos {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePromoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promos[id]; !ok {
		return domain.NewNotFoundError("Promotion", id.String())
	}
	delete(r.promos, id)
	return nil
}

// fakeRoomRepo is an in-memory room repository.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomDomain.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]*roomDomain.Room)}
}

func (r *fakeRoomRepo) Save(_ context.Context, rm *roomDomain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[rm.ID()] = rm
	return nil
}

func (r *fakeRoomRepo) Update(_ context.Context, rm *roomDomain.Room) error {
	return r.Save(context.Background(), rm)
}

func (r *fakeRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("Room", id.String())
	}
	return rm, nil
}

func (r *fakeRoomRepo) ListByHotel(_ context.Context, hotelID uuid.UUID) ([]*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*roomDomain.Room
	for _, rm := range r.rooms {
		if rm.HotelID() == hotelID {
			out = append(out, rm)
		}
	}
	return out, nil
}

// recordingPublisher captures published status events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	bookingID uuid.UUID
	eventType string
	reason    string
}

func (p *recordingPublisher) PublishStatusChange(_ context.Context, b *bookingDomain.Booking, eventType, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{bookingID: b.ID(), eventType: eventType, reason: reason})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}
