package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAppointmentStatus(t *testing.T) {
	for _, s := range []string{"Pending", "Confirmed", "Cancelled"} {
		st, err := ParseAppointmentStatus(s)
		assert.NoError(t, err)
		assert.Equal(t, AppointmentStatus(s), st)
	}

	_, err := ParseAppointmentStatus("pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	_, err = ParseAppointmentStatus("")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     error
	}{
		{StatusPending, StatusConfirmed, nil},
		{StatusPending, StatusCancelled, nil},
		{StatusPending, StatusPending, ErrInvalidTransition},
		{StatusConfirmed, StatusCancelled, ErrInvalidTransition},
		{StatusConfirmed, StatusPending, ErrInvalidTransition},
		{StatusCancelled, StatusConfirmed, ErrInvalidTransition},
		{StatusPending, "Archived", ErrUnknownStatus},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.CanTransition(tt.to)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStatusCountsAdd(t *testing.T) {
	var c StatusCounts
	c.Add(StatusPending, 2)
	c.Add(StatusConfirmed, 1)
	c.Add(StatusCancelled, 3)
	c.Add("Unknown", 7)
	assert.Equal(t, StatusCounts{Pending: 2, Confirmed: 1, Cancelled: 3}, c)
}

func TestDoctorUpdateApply(t *testing.T) {
	name := "Dr. Rao"
	rating := 4.9
	d := Doctor{Name: "Dr. R", Specialty: "Cardiology", Rating: 4.5}
	u := DoctorUpdate{Name: &name, Rating: &rating}

	assert.False(t, u.Empty())
	u.Apply(&d)
	assert.Equal(t, "Dr. Rao", d.Name)
	assert.Equal(t, 4.9, d.Rating)
	assert.Equal(t, "Cardiology", d.Specialty)
	assert.True(t, DoctorUpdate{}.Empty())
}
