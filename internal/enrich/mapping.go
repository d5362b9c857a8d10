package enrich

import (
	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/pkg/endato"
	"github.com/sells-group/estate-leads/pkg/skipengine"
)

// Degraded returns the lead for m with every enrichment field empty and the
// given reason recorded.
func Degraded(m model.OwnershipMatch, reason model.Degradation) model.EnrichedLead {
	return model.EnrichedLead{
		OwnershipMatch: m,
		Degradation:    reason,
	}
}

// ApplySkipTrace copies a skip-trace result onto lead. A nil result leaves
// the phone slots nil and every property field empty.
func ApplySkipTrace(lead *model.EnrichedLead, out *skipengine.Output) {
	if out == nil {
		lead.SkipEnginePhoneNumbers = nil
		return
	}
	p := out.Property

	lead.SkipEnginePhoneNumbers = out.Identity.Phones.Slots()
	lead.DeedDetails = model.DeedDetails{
		MortgageAmount: p.CurrentDeed.MortgageAmount.String(),
		Equity:         p.CurrentDeed.EquityPercentage.String(),
		LoanToValue:    p.CurrentDeed.LoanToValue.String(),
	}
	lead.TaxDelinquentYear = p.Tax.TaxDelinquentYear.String()
	lead.YearBuilt = p.PropertyUseInfo.YearBuilt.String()
	lead.DistressedDetails = model.DistressedDetails{
		Foreclosure:    p.PropertyDetails.Foreclosure.String(),
		PreForeclosure: p.PropertyDetails.PreForeclosure.String(),
		BankOwned:      p.PropertyDetails.BankOwned.String(),
		Auction:        p.PropertyDetails.Auction.String(),
		Vacant:         p.PropertyDetails.Vacant.String(),
		Absentee:       p.PropertyDetails.Absentee.String(),
	}
	lead.SalesInfo = model.SalesInfo{
		PriorSaleAmount:      p.SaleInfo.AssessorPriorSaleAmount.String(),
		PriorSaleDate:        p.SaleInfo.AssessorPriorSaleDate.String(),
		SellerPurchaseDate:   p.SaleInfo.AssessorLastSaleDate.String(),
		SellerPurchaseAmount: p.SaleInfo.AssessorLastSaleAmount.String(),
	}
	lead.PropertySpecs = model.PropertySpecs{
		LivingSqFt:   p.PropertySize.LivingSqFt.String(),
		BasementArea: p.PropertySize.BasementArea.String(),
		Garage:       p.PropertySize.ParkingGarage.String(),
		Pool:         p.Pool.Pool.String(),
		LotAcres:     p.PropertySize.AreaLotAcres.String(),
		FullBaths:    p.IntRoomInfo.BathCount.String(),
		HalfBaths:    p.IntRoomInfo.BathPartialCount.String(),
		Bedrooms:     p.IntRoomInfo.BedroomsCount.String(),
		Stories:      p.IntRoomInfo.StoriesCount.String(),
	}
	lead.EstimatedValue = p.EstimatedValue.EstimatedValue.String()
}

// ApplyPeopleSearch copies a people-search result onto lead. A nil result
// leaves the phone list nil and age empty.
func ApplyPeopleSearch(lead *model.EnrichedLead, p *endato.Person) {
	if p == nil {
		lead.EndatoPhoneNumbers = nil
		lead.Age = ""
		return
	}
	lead.EndatoPhoneNumbers = p.Numbers()
	if age := p.Age.String(); age != "" {
		lead.Age = age
	}
}
