package skipengine

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text is a provider field that may arrive as a JSON string, number, or
// boolean. It always decodes to its string form; null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")) {
		*t = Text(b)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return err
	}
	*t = Text(b)
	return nil
}

// String returns the field value.
func (t Text) String() string {
	return string(t)
}

// Output is the skip-trace result for one person and property.
type Output struct {
	Identity Identity `json:"Identity"`
	Property Property `json:"Property"`
}

// Identity holds the traced person.
type Identity struct {
	Phones *Phones `json:"Phones"`
}

// Phones holds the five numbered phone slots.
type Phones struct {
	Phone  *PhoneSlot `json:"Phone"`
	Phone2 *PhoneSlot `json:"Phone2"`
	Phone3 *PhoneSlot `json:"Phone3"`
	Phone4 *PhoneSlot `json:"Phone4"`
	Phone5 *PhoneSlot `json:"Phone5"`
}

// PhoneSlot is one phone entry.
type PhoneSlot struct {
	Phone Text `json:"Phone"`
}

func (s *PhoneSlot) value() string {
	if s == nil {
		return ""
	}
	return s.Phone.String()
}

// Slots returns the five slot values in order. Missing slots are "".
func (p *Phones) Slots() []string {
	if p == nil {
		return nil
	}
	return []string{p.Phone.value(), p.Phone2.value(), p.Phone3.value(), p.Phone4.value(), p.Phone5.value()}
}

// Property holds the traced property's attributes.
type Property struct {
	CurrentDeed     CurrentDeed     `json:"CurrentDeed"`
	Tax             Tax             `json:"Tax"`
	PropertyUseInfo PropertyUseInfo `json:"PropertyUseInfo"`
	PropertyDetails PropertyDetails `json:"PropertyDetails"`
	SaleInfo        SaleInfo        `json:"SaleInfo"`
	PropertySize    PropertySize    `json:"PropertySize"`
	Pool            Pool            `json:"Pool"`
	IntRoomInfo     IntRoomInfo     `json:"IntRoomInfo"`
	EstimatedValue  EstimatedValue  `json:"EstimatedValue"`
}

// CurrentDeed describes the open mortgage.
type CurrentDeed struct {
	MortgageAmount   Text `json:"MortgageAmount"`
	EquityPercentage Text `json:"EquityPercentage"`
	LoanToValue      Text `json:"LoanToValue"`
}

// Tax describes tax status.
type Tax struct {
	TaxDelinquentYear Text `json:"TaxDelinquentYear"`
}

// PropertyUseInfo describes construction.
type PropertyUseInfo struct {
	YearBuilt Text `json:"YearBuilt"`
}

// PropertyDetails carries Y/N distress flags.
type PropertyDetails struct {
	Foreclosure    Text `json:"Foreclosure"`
	PreForeclosure Text `json:"PreForeclosure"`
	BankOwned      Text `json:"BankOwned"`
	Auction        Text `json:"Auction"`
	Vacant         Text `json:"Vacant"`
	Absentee       Text `json:"Absentee"`
}

// SaleInfo describes the assessor's sale history.
type SaleInfo struct {
	AssessorPriorSaleAmount Text `json:"AssessorPriorSaleAmount"`
	AssessorPriorSaleDate   Text `json:"AssessorPriorSaleDate"`
	AssessorLastSaleDate    Text `json:"AssessorLastSaleDate"`
	AssessorLastSaleAmount  Text `json:"AssessorLastSaleAmount"`
}

// PropertySize describes areas.
type PropertySize struct {
	LivingSqFt    Text `json:"LivingSqFt"`
	BasementArea  Text `json:"BasementArea"`
	ParkingGarage Text `json:"ParkingGarage"`
	AreaLotAcres  Text `json:"AreaLotAcres"`
}

// Pool describes a pool.
type Pool struct {
	Pool Text `json:"Pool"`
}

// IntRoomInfo describes rooms.
type IntRoomInfo struct {
	BathCount        Text `json:"BathCount"`
	BathPartialCount Text `json:"BathPartialCount"`
	BedroomsCount    Text `json:"BedroomsCount"`
	StoriesCount     Text `json:"StoriesCount"`
}

// EstimatedValue is the provider's valuation.
type EstimatedValue struct {
	EstimatedValue Text `json:"EstimatedValue"`
}
