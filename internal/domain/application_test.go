package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_Next(t *testing.T) {
	tests := []struct {
		name    string
		from    ApplicationStatus
		event   ApplicationEvent
		want    ApplicationStatus
		wantErr bool
	}{
		{"pending approved for payment", ApplicationPending, EventApproveForPayment, ApplicationPaymentPending, false},
		{"pending rejected", ApplicationPending, EventReject, ApplicationRejected, false},
		{"payment submitted", ApplicationPaymentPending, EventSubmitPayment, ApplicationPaymentReview, false},
		{"payment approved", ApplicationPaymentReview, EventApprovePayment, ApplicationBooked, false},
		{"payment rejected reopens", ApplicationPaymentReview, EventRejectPayment, ApplicationPaymentPending, false},
		{"pending cannot submit payment", ApplicationPending, EventSubmitPayment, "", true},
		{"payment_pending cannot be rejected", ApplicationPaymentPending, EventReject, "", true},
		{"booked is terminal", ApplicationBooked, EventReject, "", true},
		{"rejected is terminal", ApplicationRejected, EventApproveForPayment, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Next(tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplicationStatus_IsTerminal(t *testing.T) {
	assert.True(t, ApplicationBooked.IsTerminal())
	assert.True(t, ApplicationRejected.IsTerminal())
	assert.False(t, ApplicationPending.IsTerminal())
	assert.False(t, ApplicationPaymentPending.IsTerminal())
	assert.False(t, ApplicationPaymentReview.IsTerminal())
}

func TestStallInstanceStatus_CanTransition(t *testing.T) {
	assert.True(t, StallAvailable.CanTransition(StallPending))
	assert.True(t, StallPending.CanTransition(StallAvailable))
	assert.True(t, StallPending.CanTransition(StallBooked))

	assert.False(t, StallAvailable.CanTransition(StallBooked))
	assert.False(t, StallBooked.CanTransition(StallAvailable))
	assert.False(t, StallBooked.CanTransition(StallPending))
}
