package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/stayhub/service-booking/internal/domain/booking"
	promoDomain "github.com/stayhub/service-booking/internal/domain/promotion"
)

var fixedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type promoFixture struct {
	svc      *PromotionService
	promos   *fakePromoRepo
	bookings *fakeBookingRepo
}

func newPromoFixture(t *testing.T) *promoFixture {
	t.Helper()
	promos := newFakePromoRepo()
	bookings := newFakeBookingRepo()
	svc := NewPromotionService(promos, bookings, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return &promoFixture{svc: svc, promos: promos, bookings: bookings}
}

func (f *promoFixture) addPromotion(t *testing.T, code string, cfg promoDomain.Config) *promoDomain.Promotion {
	t.Helper()
	p, err := promoDomain.NewPromotion(code, cfg, uuid.New())
	require.NoError(t, err)
	require.NoError(t, f.promos.Save(context.Background(), p))
	return p
}

// addUsage records a confirmed booking that consumed the promotion with the
// given fingerprint, as CreateBooking would have persisted it.
func (f *promoFixture) addUsage(t *testing.T, userID uuid.UUID, promoID uuid.UUID, fp bookingDomain.Fingerprint) *bookingDomain.Booking {
	t.Helper()
	b, err := bookingDomain.NewBooking(userID, uuid.New(), uuid.New(),
		fixedNow.AddDate(0, 0, 7), fixedNow.AddDate(0, 0, 10), 30000)
	require.NoError(t, err)
	require.NoError(t, b.ApplyPromotion(promoID, 3000, fp, fixedNow))
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func save10Config() promoDomain.Config {
	return promoDomain.Config{
		DiscountType:  promoDomain.DiscountTypePercentage,
		DiscountValue: 10,
		MinNights:     2,
	}
}

func fullFingerprint() bookingDomain.Fingerprint {
	return bookingDomain.Fingerprint{
		PhoneHash:         "phone-hash-1",
		CardHash:          "card-hash-1",
		DeviceFingerprint: "device-1",
		IPAddress:         "10.0.0.1",
	}
}

func TestValidate_Success(t *testing.T) {
	f := newPromoFixture(t)
	p := f.addPromotion(t, "SAVE10", save10Config())

	outcome, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, outcome)
	assert.Equal(t, p.ID(), outcome.PromotionID)
	assert.Equal(t, "SAVE10", outcome.Code)
	assert.EqualValues(t, 3000, outcome.DiscountCents)
	assert.EqualValues(t, 27000, outcome.FinalPriceCents)
}

func TestValidate_CodeIsCaseInsensitive(t *testing.T) {
	f := newPromoFixture(t)
	f.addPromotion(t, "SAVE10", save10Config())

	outcome, rejection, err := f.svc.Validate(context.Background(), "save10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, outcome)
}

func TestValidate_UnknownCode(t *testing.T) {
	f := newPromoFixture(t)

	outcome, rejection, err := f.svc.Validate(context.Background(), "NOPE", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.Nil(t, outcome)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonNotFound, rejection.Reason)
}

func TestValidate_Inactive(t *testing.T) {
	f := newPromoFixture(t)
	p := f.addPromotion(t, "OFF", save10Config())
	p.Deactivate()

	_, rejection, err := f.svc.Validate(context.Background(), "OFF", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonInactive, rejection.Reason)
}

func TestValidate_Expired(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.ValidUntil = fixedNow.Add(-time.Hour)
	f.addPromotion(t, "OLD", cfg)

	_, rejection, err := f.svc.Validate(context.Background(), "OLD", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonExpired, rejection.Reason)
}

func TestValidate_NotYetStarted(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.ValidFrom = fixedNow.Add(time.Hour)
	f.addPromotion(t, "SOON", cfg)

	_, rejection, err := f.svc.Validate(context.Background(), "SOON", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonInactive, rejection.Reason)
}

func TestValidate_MinimumNights(t *testing.T) {
	f := newPromoFixture(t)
	f.addPromotion(t, "SAVE10", save10Config())

	_, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 1, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonMinimumNightsNotMet, rejection.Reason)
}

func TestValidate_MinimumAmount(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MinAmountCents = 50000
	f.addPromotion(t, "BIG", cfg)

	_, rejection, err := f.svc.Validate(context.Background(), "BIG", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonMinimumAmountNotMet, rejection.Reason)
}

func TestValidate_GlobalLimit(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MaxTotalUses = 2
	p := f.addPromotion(t, "SAVE10", cfg)

	f.addUsage(t, uuid.New(), p.ID(), bookingDomain.Fingerprint{PhoneHash: "a"})
	f.addUsage(t, uuid.New(), p.ID(), bookingDomain.Fingerprint{PhoneHash: "b"})

	_, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonGlobalLimitReached, rejection.Reason)
}

func TestValidate_CancelledBookingsDoNotCount(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MaxTotalUses = 1
	p := f.addPromotion(t, "SAVE10", cfg)

	used := f.addUsage(t, uuid.New(), p.ID(), bookingDomain.Fingerprint{PhoneHash: "a"})
	require.NoError(t, used.Cancel("release the use", 0, fixedNow))
	require.NoError(t, f.bookings.Save(context.Background(), used))

	outcome, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, outcome)
}

func TestValidate_PerComponentLimits(t *testing.T) {
	fp := fullFingerprint()

	tests := []struct {
		name   string
		cfg    func(c *promoDomain.Config)
		reason promoDomain.RejectionReason
	}{
		{"phone", func(c *promoDomain.Config) { c.MaxUsesPerPhone = 1 }, promoDomain.ReasonPhoneLimitReached},
		{"card", func(c *promoDomain.Config) { c.MaxUsesPerCard = 1 }, promoDomain.ReasonCardLimitReached},
		{"device", func(c *promoDomain.Config) { c.MaxUsesPerDevice = 1 }, promoDomain.ReasonDeviceLimitReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPromoFixture(t)
			cfg := save10Config()
			tt.cfg(&cfg)
			p := f.addPromotion(t, "SAVE10", cfg)

			// Another account already consumed the use with the same identifiers.
			f.addUsage(t, uuid.New(), p.ID(), fp)

			_, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
				promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fp)

			require.NoError(t, err)
			require.NotNil(t, rejection)
			assert.Equal(t, tt.reason, rejection.Reason)
		})
	}
}

func TestValidate_AccountLimit(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MaxUsesPerAccount = 1
	p := f.addPromotion(t, "SAVE10", cfg)

	userID := uuid.New()
	// Same account, but every other identifier is fresh.
	f.addUsage(t, userID, p.ID(), bookingDomain.Fingerprint{PhoneHash: "other"})

	_, rejection, err := f.svc.Validate(context.Background(), "SAVE10", userID,
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonAccountLimitReached, rejection.Reason)

	// A different account passes.
	outcome, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, outcome)
}

func TestValidate_AbsentComponentIsSkipped(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MaxUsesPerPhone = 1
	p := f.addPromotion(t, "SAVE10", cfg)

	f.addUsage(t, uuid.New(), p.ID(), bookingDomain.Fingerprint{PhoneHash: "used-phone"})

	// The attempt supplies no phone at all, so the phone limit cannot match.
	outcome, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000},
		bookingDomain.Fingerprint{DeviceFingerprint: "fresh-device"})

	require.NoError(t, err)
	require.Nil(t, rejection)
	require.NotNil(t, outcome)
}

func TestValidate_FallbackComponentLimit(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MaxUsesPerLimit = 1
	p := f.addPromotion(t, "SAVE10", cfg)

	fp := fullFingerprint()
	f.addUsage(t, uuid.New(), p.ID(), fp)

	_, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
		promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fp)

	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, promoDomain.ReasonPhoneLimitReached, rejection.Reason)
}

func TestValidate_NeverMutatesState(t *testing.T) {
	f := newPromoFixture(t)
	cfg := save10Config()
	cfg.MaxTotalUses = 5
	p := f.addPromotion(t, "SAVE10", cfg)

	for i := 0; i < 3; i++ {
		_, rejection, err := f.svc.Validate(context.Background(), "SAVE10", uuid.New(),
			promoDomain.Candidate{Nights: 3, SubtotalCents: 30000}, fullFingerprint())
		require.NoError(t, err)
		require.Nil(t, rejection)
	}

	// Repeated passing validations consume nothing.
	uses, err := f.bookings.CountPromotionUses(context.Background(), p.ID())
	require.NoError(t, err)
	assert.EqualValues(t, 0, uses)
}

func TestCreatePromotion_And_Usage(t *testing.T) {
	f := newPromoFixture(t)

	dto, err := f.svc.CreatePromotion(context.Background(), uuid.New(), CreatePromotionRequest{
		Code:          "spring24",
		DiscountType:  "percentage",
		DiscountValue: 15,
		MaxTotalUses:  100,
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING24", dto.Code)
	assert.True(t, dto.Active)

	f.addUsage(t, uuid.New(), dto.ID, fullFingerprint())

	usage, err := f.svc.GetUsage(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, usage.TotalUses)
	assert.Equal(t, 100, usage.MaxTotalUses)
}

func TestUpdatePromotion_InvalidDates(t *testing.T) {
	f := newPromoFixture(t)
	p := f.addPromotion(t, "SAVE10", save10Config())

	_, err := f.svc.UpdatePromotion(context.Background(), p.ID(), CreatePromotionRequest{
		Code:          "SAVE10",
		DiscountType:  "percentage",
		DiscountValue: 10,
		ValidFrom:     "not-a-date",
	})
	assert.Error(t, err)
}
