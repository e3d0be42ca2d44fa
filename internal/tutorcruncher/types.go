package tutorcruncher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/shopspring/decimal"
)

// flexDecimal accepts a JSON string, number or null. Anything unparseable decodes as invalid.
type flexDecimal decimal.NullDecimal

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	*d = flexDecimal{}
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	*d = flexDecimal(decimal.NewNullDecimal(v))
	return nil
}

// flexInt accepts a JSON number or numeric string, anything else decodes as 0.
type flexInt int

func (i *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*i = 0
		return nil
	}
	*i = flexInt(v)
	return nil
}

// flexString accepts any JSON scalar. Objects, arrays and null decode as "".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		*s = flexString(v)
	case '{', '[', 'n':
	default:
		*s = flexString(b)
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// flexTime decodes the timestamp formats TutorCruncher emits, unparseable values decode as zero.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	*t = flexTime{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = flexTime(v)
			return nil
		}
	}
	return nil
}

// objects decodes a JSON array keeping only its object elements.
type objects[T any] []T

func (o *objects[T]) UnmarshalJSON(b []byte) error {
	*o = nil
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil
	}
	for _, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		*o = append(*o, v)
	}
	return nil
}

type wireRef struct {
	Id  flexInt    `json:"id"`
	URL flexString `json:"url"`
}

type wireService struct {
	Id                flexInt     `json:"id"`
	Name              flexString  `json:"name"`
	DftChargeType     flexString  `json:"dft_charge_type"`
	DftChargeRate     flexDecimal `json:"dft_charge_rate"`
	DftContractorRate flexDecimal `json:"dft_contractor_rate"`
	Status            flexString  `json:"status"`
	URL               flexString  `json:"url"`
}

type wireRcra struct {
	Recipient        flexInt     `json:"recipient"`
	RecipientName    flexString  `json:"recipient_name"`
	PayingClient     flexInt     `json:"paying_client"`
	PayingClientName flexString  `json:"paying_client_name"`
	ChargeRate       flexDecimal `json:"charge_rate"`
	Status           flexString  `json:"status"`
}

type wireCja struct {
	Contractor     flexInt     `json:"contractor"`
	ContractorName flexString  `json:"contractor_name"`
	PayRate        flexDecimal `json:"pay_rate"`
}

type wireAppointment struct {
	Id         flexInt           `json:"id"`
	Start      flexTime          `json:"start"`
	Finish     flexTime          `json:"finish"`
	Units      flexDecimal       `json:"units"`
	Topic      flexString        `json:"topic"`
	Location   flexString        `json:"location"`
	Status     flexString        `json:"status"`
	ChargeType flexString        `json:"charge_type"`
	Service    *wireService      `json:"service"`
	Rcras      objects[wireRcra] `json:"rcras"`
	Cjas       objects[wireCja]  `json:"cjas"`
}

type wireExtraAttr struct {
	MachineName flexString `json:"machine_name"`
	Name        flexString `json:"name"`
	Value       flexString `json:"value"`
}

type wireClient struct {
	Id          flexInt                `json:"id"`
	FirstName   flexString             `json:"first_name"`
	LastName    flexString             `json:"last_name"`
	Email       flexString             `json:"email"`
	Status      flexString             `json:"status"`
	DateCreated flexTime               `json:"date_created"`
	ExtraAttrs  objects[wireExtraAttr] `json:"extra_attrs"`
}

type wireAdHocCharge struct {
	Id            flexInt     `json:"id"`
	DateOccurred  flexTime    `json:"date_occurred"`
	Description   flexString  `json:"description"`
	CategoryName  flexString  `json:"category_name"`
	Client        *wireRef    `json:"client"`
	ClientCost    flexDecimal `json:"client_cost"`
	PayContractor flexDecimal `json:"pay_contractor"`
}

type wireReport struct {
	Id          flexInt                `json:"id"`
	Appointment *wireRef               `json:"appointment"`
	ExtraAttrs  objects[wireExtraAttr] `json:"extra_attrs"`
}

// RecordId returns the id of a raw TutorCruncher object. Objects without an id fall back
// to the last path segment of their url, or of their appointment url for reports.
func RecordId(raw json.RawMessage) (int, bool) {
	var r struct {
		wireRef
		Appointment *wireRef `json:"appointment"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return 0, false
	}
	if r.Id > 0 {
		return int(r.Id), true
	}
	if id, ok := idFromURL(string(r.URL)); ok {
		return id, true
	}
	if r.Appointment != nil {
		return idFromURL(string(r.Appointment.URL))
	}
	return 0, false
}

func idFromURL(u string) (int, bool) {
	parts := strings.FieldsFunc(u, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func nd(d flexDecimal) decimal.NullDecimal {
	return decimal.NullDecimal(d)
}

func (s *wireService) entity() entity.Service {
	return entity.Service{
		Id:                    int(s.Id),
		Name:                  string(s.Name),
		Status:                string(s.Status),
		DefaultChargeType:     string(s.DftChargeType),
		DefaultChargeRate:     nd(s.DftChargeRate),
		DefaultContractorRate: nd(s.DftContractorRate),
		URL:                   string(s.URL),
	}
}

// DecodeAppointment decodes an appointment instance.
func DecodeAppointment(raw json.RawMessage) (entity.Appointment, error) {
	var w wireAppointment
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.Appointment{}, fmt.Errorf("can't decode appointment: %w", err)
	}
	a := entity.Appointment{
		Id:         int(w.Id),
		Start:      time.Time(w.Start),
		Finish:     time.Time(w.Finish),
		Units:      nd(w.Units),
		Topic:      string(w.Topic),
		Location:   string(w.Location),
		Status:     string(w.Status),
		ChargeType: string(w.ChargeType),
	}
	if w.Service != nil {
		s := w.Service.entity()
		a.Service = entity.AppointmentService{
			Id:                    s.Id,
			Name:                  s.Name,
			DefaultChargeType:     s.DefaultChargeType,
			DefaultChargeRate:     s.DefaultChargeRate,
			DefaultContractorRate: s.DefaultContractorRate,
			Status:                s.Status,
			URL:                   s.URL,
		}
	}
	for _, r := range w.Rcras {
		a.Rcras = append(a.Rcras, entity.RecipientCharge{
			Recipient:        int(r.Recipient),
			RecipientName:    string(r.RecipientName),
			PayingClient:     int(r.PayingClient),
			PayingClientName: string(r.PayingClientName),
			ChargeRate:       nd(r.ChargeRate),
			Status:           string(r.Status),
		})
	}
	for _, c := range w.Cjas {
		a.Cjas = append(a.Cjas, entity.ContractorJob{
			Contractor:     int(c.Contractor),
			ContractorName: string(c.ContractorName),
			PayRate:        nd(c.PayRate),
		})
	}
	return a, nil
}

func extraAttrs(ws objects[wireExtraAttr]) []entity.ExtraAttr {
	out := make([]entity.ExtraAttr, 0, len(ws))
	for _, a := range ws {
		out = append(out, entity.ExtraAttr{
			MachineName: string(a.MachineName),
			Name:        string(a.Name),
			Value:       string(a.Value),
		})
	}
	return out
}

// DecodeClient decodes a client instance.
func DecodeClient(raw json.RawMessage) (entity.Client, error) {
	var w wireClient
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.Client{}, fmt.Errorf("can't decode client: %w", err)
	}
	return entity.Client{
		Id:          int(w.Id),
		FirstName:   string(w.FirstName),
		LastName:    string(w.LastName),
		Email:       string(w.Email),
		Status:      string(w.Status),
		DateCreated: time.Time(w.DateCreated),
		ExtraAttrs:  extraAttrs(w.ExtraAttrs),
	}, nil
}

// DecodeAdHocCharge decodes an ad hoc charge.
func DecodeAdHocCharge(raw json.RawMessage) (entity.AdHocCharge, error) {
	var w wireAdHocCharge
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.AdHocCharge{}, fmt.Errorf("can't decode ad hoc charge: %w", err)
	}
	c := entity.AdHocCharge{
		Id:            int(w.Id),
		DateOccurred:  time.Time(w.DateOccurred),
		Description:   string(w.Description),
		CategoryName:  string(w.CategoryName),
		ClientCost:    nd(w.ClientCost),
		PayContractor: nd(w.PayContractor),
	}
	if w.Client != nil {
		c.ClientId = int(w.Client.Id)
	}
	return c, nil
}

// DecodeService decodes a service (job).
func DecodeService(raw json.RawMessage) (entity.Service, error) {
	var w wireService
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.Service{}, fmt.Errorf("can't decode service: %w", err)
	}
	return w.entity(), nil
}

// DecodeReport decodes a lesson report and lifts the session report and rating
// attributes out of its extra attributes.
func DecodeReport(raw json.RawMessage) (entity.Report, error) {
	var w wireReport
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.Report{}, fmt.Errorf("can't decode report: %w", err)
	}
	id, _ := RecordId(raw)
	r := entity.Report{
		Id:      id,
		Payload: raw,
	}
	if w.Appointment != nil {
		r.AppointmentId = int(w.Appointment.Id)
		if r.AppointmentId == 0 {
			r.AppointmentId, _ = idFromURL(string(w.Appointment.URL))
		}
	}
	for _, a := range w.ExtraAttrs {
		name := string(a.MachineName)
		switch {
		case name == "client_report":
			r.SessionReport = string(a.Value)
		case strings.Contains(name, "attitude"), strings.Contains(name, "engagement"):
			r.AttitudeRating = string(a.Value)
		case strings.Contains(name, "progress"):
			r.ProgressRating = string(a.Value)
		}
	}
	return r, nil
}
