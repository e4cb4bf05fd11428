package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofair/expofair-api/internal/domain"
)

func TestApply_ClaimsStallAndFreezesPrice(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	application, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "please")
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationPending, application.Status)
	assert.Equal(t, f.exhibition.ID, application.ExhibitionID)
	assert.True(t, application.QuotedPrice.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, domain.StallPending, f.instanceStatus(instance.ID))
	assert.Equal(t, []domain.EventType{domain.EventTypeApplicationSubmitted}, f.notifier.types())
}

func TestApply_InstancePriceOverridesTypePrice(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(2)

	override := decimal.NewFromInt(99)
	f.store.mu.Lock()
	instance.Price = &override
	f.store.instances[instance.ID] = instance
	f.store.mu.Unlock()

	application, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	require.NoError(t, err)
	assert.True(t, application.QuotedPrice.Equal(override))
}

func TestApply_SecondClaimLoses(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	_, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	require.NoError(t, err)

	_, err = f.applications.Apply(context.Background(), f.rival, instance.ID, "")
	assert.ErrorIs(t, err, ErrStallUnavailable)
}

func TestApply_ConcurrentClaimHasExactlyOneWinner(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	const contenders = 8
	errs := make([]error, contenders)

	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			brand := f.brand
			if i%2 == 1 {
				brand = f.rival
			}
			_, errs[i] = f.applications.Apply(context.Background(), brand, instance.ID, "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrStallUnavailable)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, domain.StallPending, f.instanceStatus(instance.ID))
}

func TestApply_Guards(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	_, err := f.applications.Apply(context.Background(), f.organiser, instance.ID, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	f.store.mu.Lock()
	exhibition := f.store.exhibitions[f.exhibition.ID]
	exhibition.Status = domain.ExhibitionDraft
	f.store.exhibitions[f.exhibition.ID] = exhibition
	f.store.mu.Unlock()

	_, err = f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	assert.ErrorIs(t, err, ErrExhibitionClosed)
}

func TestApply_NotifierFailureDoesNotFailTheClaim(t *testing.T) {
	f := newFixture()
	f.notifier.failErr = errors.New("broker down")
	instance := f.instanceByNumber(1)

	application, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, application.Status)
	assert.Equal(t, domain.StallPending, f.instanceStatus(instance.ID))
	assert.Equal(t, []domain.EventType{domain.EventTypeApplicationSubmitted}, f.notifier.types())
}

func TestApproveForPayment(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	application, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	require.NoError(t, err)

	approved, err := f.applications.ApproveForPayment(context.Background(), application.ID, f.organiser)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPaymentPending, approved.Status)
	// The stall is not booked yet; payment has to clear first.
	assert.Equal(t, domain.StallPending, f.instanceStatus(instance.ID))

	_, err = f.applications.ApproveForPayment(context.Background(), application.ID, f.organiser)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.applications.ApproveForPayment(context.Background(), application.ID, f.brand)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestReject_ReleasesStall(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	application, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	require.NoError(t, err)

	rejected, err := f.applications.Reject(context.Background(), application.ID, f.organiser)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, rejected.Status)
	assert.Equal(t, domain.StallAvailable, f.instanceStatus(instance.ID))

	// The freed stall can be claimed again.
	_, err = f.applications.Apply(context.Background(), f.rival, instance.ID, "")
	assert.NoError(t, err)
}

func TestDeleteApplication(t *testing.T) {
	f := newFixture()
	instance := f.instanceByNumber(1)

	application, err := f.applications.Apply(context.Background(), f.brand, instance.ID, "")
	require.NoError(t, err)

	err = f.applications.DeleteApplication(context.Background(), application.ID, f.rival)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = f.applications.DeleteApplication(context.Background(), application.ID, f.brand)
	require.NoError(t, err)
	assert.Equal(t, domain.StallAvailable, f.instanceStatus(instance.ID))

	_, err = f.applications.GetApplication(context.Background(), application.ID, f.organiser)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestDeleteApplication_BookedIsRefused(t *testing.T) {
	f := newFixture()
	application := f.bookApplication(t)

	err := f.applications.DeleteApplication(context.Background(), application.ID, f.organiser)
	assert.ErrorIs(t, err, ErrApplicationDeleteConflict)
}

func TestBulkDecide_BestEffort(t *testing.T) {
	f := newFixture()

	first, err := f.applications.Apply(context.Background(), f.brand, f.instanceByNumber(1).ID, "")
	require.NoError(t, err)
	second, err := f.applications.Apply(context.Background(), f.rival, f.instanceByNumber(2).ID, "")
	require.NoError(t, err)

	// Knock the second application out of pending first.
	_, err = f.applications.Reject(context.Background(), second.ID, f.organiser)
	require.NoError(t, err)

	decisions, err := f.applications.BulkDecide(context.Background(),
		[]uuid.UUID{first.ID, second.ID}, true, f.organiser)
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	assert.True(t, decisions[0].OK)
	assert.False(t, decisions[1].OK)
	assert.NotEmpty(t, decisions[1].Error)

	updated, err := f.applications.GetApplication(context.Background(), first.ID, f.organiser)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPaymentPending, updated.Status)
}

func TestCancelBooking_FreesBookedStall(t *testing.T) {
	f := newFixture()
	application := f.bookApplication(t)

	cancelled, err := f.applications.CancelBooking(context.Background(), application.ID, f.manager)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, cancelled.Status)
	assert.Equal(t, domain.StallAvailable, f.instanceStatus(application.StallInstanceID))
	assert.Contains(t, f.notifier.types(), domain.EventTypeBookingCancelled)
}

func TestVoidPendingApplications(t *testing.T) {
	f := newFixture()

	first, err := f.applications.Apply(context.Background(), f.brand, f.instanceByNumber(1).ID, "")
	require.NoError(t, err)
	second, err := f.applications.Apply(context.Background(), f.rival, f.instanceByNumber(2).ID, "")
	require.NoError(t, err)
	_, err = f.applications.ApproveForPayment(context.Background(), second.ID, f.organiser)
	require.NoError(t, err)

	decisions, err := f.applications.VoidPendingApplications(context.Background(), f.exhibition.ID, f.organiser)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	for _, d := range decisions {
		assert.True(t, d.OK)
	}

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		application, err := f.applications.GetApplication(context.Background(), id, f.organiser)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationRejected, application.Status)
		assert.Equal(t, domain.StallAvailable, f.instanceStatus(application.StallInstanceID))
	}
}

func TestVoidPendingApplications_RejectsOpenPaymentSubmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	application, err := f.applications.Apply(ctx, f.brand, f.instanceByNumber(1).ID, "")
	require.NoError(t, err)
	_, err = f.applications.ApproveForPayment(ctx, application.ID, f.organiser)
	require.NoError(t, err)
	submission, err := f.payments.SubmitPayment(ctx, f.brand, application.ID, domain.PaymentSubmission{
		Amount:        decimal.NewFromInt(250),
		TransactionID: "tx-void-1",
		Email:         "brand@example.com",
	})
	require.NoError(t, err)

	decisions, err := f.applications.VoidPendingApplications(ctx, f.exhibition.ID, f.organiser)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.True(t, decisions[0].OK)

	// The open submission is rejected with the void, so it no longer
	// shows up as awaiting review and cannot be reviewed later.
	reviewed, err := f.payments.GetPayment(ctx, submission.ID, f.organiser)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, reviewed.Status)
	require.NotNil(t, reviewed.RejectionReason)

	pending, err := f.payments.ListPendingByExhibition(ctx, f.exhibition.ID, f.organiser)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.payments.ReviewPayment(ctx, submission.ID, domain.PaymentDecisionApprove, "", f.organiser)
	assert.ErrorIs(t, err, ErrStalePaymentStatus)
}

// bookApplication walks one application through the whole happy path.
func (f *fixture) bookApplication(t *testing.T) domain.StallApplication {
	t.Helper()
	ctx := context.Background()

	application, err := f.applications.Apply(ctx, f.brand, f.instanceByNumber(1).ID, "")
	require.NoError(t, err)
	_, err = f.applications.ApproveForPayment(ctx, application.ID, f.organiser)
	require.NoError(t, err)

	submission, err := f.payments.SubmitPayment(ctx, f.brand, application.ID, domain.PaymentSubmission{
		Amount:        application.QuotedPrice,
		TransactionID: "TXN-1",
		Email:         "brand@example.com",
	})
	require.NoError(t, err)

	_, err = f.payments.ReviewPayment(ctx, submission.ID, domain.PaymentDecisionApprove, "", f.organiser)
	require.NoError(t, err)

	booked, err := f.applications.GetApplication(ctx, application.ID, f.organiser)
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationBooked, booked.Status)
	return booked
}
