package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pensionado/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	MsgDateRequired     = "date is required"
	MsgTimeRequired     = "time is required"
	MsgPartySize        = "party size must be between 1 and 8"
	MsgCommentsTooLong  = "comments must be at most 200 characters"
	MsgDateFormat       = "date must be in YYYY-MM-DD format"
	MsgPastDate         = "date cannot be in the past"
	MsgSameDayLeadTime  = "book at least %d hours ahead for same-day reservations"
	MsgUnknownSlot      = "time %s is not an available slot"
	MsgDoubleBooking    = "you already have a reservation on %s at %s"
	msgFallbackTemplate = "%s is invalid"
)

// ValidationErrors is the ordered list of rule violations for a draft.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(v, "; "))
}

// Messages returns the violations as plain strings.
func (v ValidationErrors) Messages() []string {
	return append([]string(nil), v...)
}

// AsValidationErrors extracts violations from err, if any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Input is everything a check needs. Existing holds the user's own
// reservations; EditingID names the reservation being edited, if any.
type Input struct {
	Draft     models.Draft
	Existing  []models.Reservation
	EditingID string
	Now       time.Time
}

type ReservationValidator struct {
	validate  *validator.Validate
	slots     map[string]bool
	leadHours int
	logger    *zerolog.Logger
}

func NewReservationValidator(slots []string, leadHours int, logger *zerolog.Logger) *ReservationValidator {
	if len(slots) == 0 {
		slots = models.TimeSlots
	}
	allowed := make(map[string]bool, len(slots))
	for _, s := range slots {
		allowed[s] = true
	}

	return &ReservationValidator{
		validate:  validator.New(),
		slots:     allowed,
		leadHours: leadHours,
		logger:    logger,
	}
}

// Validate runs every rule and collects all violations in a fixed order:
// required fields, party size, comment length, date format, slot, past
// date, double booking, same-day lead time. A nil result means valid.
func (v *ReservationValidator) Validate(in Input) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, v.checkFields(in.Draft)...)

	d := in.Draft
	var day time.Time
	dayOK := false
	if d.Date != "" {
		parsed, err := time.ParseInLocation(models.DateLayout, d.Date, in.Now.Location())
		if err != nil {
			errs = append(errs, MsgDateFormat)
		} else {
			day, dayOK = parsed, true
		}
	}

	slotHour, slotOK := -1, false
	if d.Time != "" {
		if !v.slots[d.Time] {
			errs = append(errs, fmt.Sprintf(MsgUnknownSlot, d.Time))
		}
		if t, err := time.Parse("15:04", d.Time); err == nil {
			slotHour, slotOK = t.Hour(), true
		}
	}

	today := dateOnly(in.Now)
	if dayOK && day.Before(today) {
		errs = append(errs, MsgPastDate)
	}

	if d.Date != "" && d.Time != "" && collides(in) {
		errs = append(errs, fmt.Sprintf(MsgDoubleBooking, d.Date, d.Time))
	}

	if dayOK && slotOK && day.Equal(today) && slotHour < in.Now.Hour()+v.leadHours {
		errs = append(errs, fmt.Sprintf(MsgSameDayLeadTime, v.leadHours))
	}

	if len(errs) > 0 {
		v.logger.Debug().Strs("violations", errs).Str("date", d.Date).Str("time", d.Time).Msg("reservation draft rejected")
		return errs
	}
	return nil
}

func (v *ReservationValidator) checkFields(d models.Draft) ValidationErrors {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.logger.Error().Err(err).Msg("struct validation failed")
		return ValidationErrors{err.Error()}
	}
	return translateValidationErrors(fieldErrs)
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		switch err.Field() {
		case "Date":
			out = append(out, MsgDateRequired)
		case "Time":
			out = append(out, MsgTimeRequired)
		case "PartySize":
			out = append(out, MsgPartySize)
		case "Comments":
			out = append(out, MsgCommentsTooLong)
		default:
			out = append(out, fmt.Sprintf(msgFallbackTemplate, err.Field()))
		}
	}
	return out
}

func collides(in Input) bool {
	for _, r := range in.Existing {
		if !r.IsActive() || r.ID == in.EditingID {
			continue
		}
		if r.Date == in.Draft.Date && r.Time == in.Draft.Time {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
