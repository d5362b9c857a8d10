package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/estate-leads/internal/publish"
	"github.com/sells-group/estate-leads/pkg/salesforce"
)

type mockSF struct {
	mock.Mock
}

func (m *mockSF) Query(ctx context.Context, soql string, out any) error {
	args := m.Called(ctx, soql, out)
	if rows, ok := args.Get(1).([]salesforce.Contact); ok {
		*(out.(*[]salesforce.Contact)) = rows
	}
	return args.Error(0)
}

func (m *mockSF) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	args := m.Called(ctx, sObjectName, record)
	return args.String(0), args.Error(1)
}

func (m *mockSF) DescribeSObject(ctx context.Context, name string) (*salesforce.SObjectDescription, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesforce.SObjectDescription), args.Error(1)
}

func TestSearchContact(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		sf := &mockSF{}
		sf.On("Query", ctx, mock.MatchedBy(func(q string) bool {
			return q == "SELECT Id, FirstName, LastName, Phone FROM Contact WHERE FirstName = 'John' AND LastName = 'O\\'Neil' LIMIT 1"
		}), mock.Anything).Return(nil, []salesforce.Contact{{ID: "003A"}})

		id, err := NewSalesforce(sf, Settings{}).SearchContact(ctx, "John", "O'Neil")
		require.NoError(t, err)
		assert.Equal(t, "003A", id)
	})

	t.Run("not found", func(t *testing.T) {
		sf := &mockSF{}
		sf.On("Query", ctx, mock.Anything, mock.Anything).Return(nil, []salesforce.Contact{})

		id, err := NewSalesforce(sf, Settings{}).SearchContact(ctx, "John", "Smith")
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("error", func(t *testing.T) {
		sf := &mockSF{}
		sf.On("Query", ctx, mock.Anything, mock.Anything).Return(errors.New("INVALID_SESSION_ID"), nil)

		_, err := NewSalesforce(sf, Settings{}).SearchContact(ctx, "John", "Smith")
		assert.ErrorContains(t, err, "crm: search contact")
	})
}

func TestCreateContact(t *testing.T) {
	ctx := context.Background()
	sf := &mockSF{}
	sf.On("InsertOne", ctx, salesforce.SObjectContact, mock.MatchedBy(func(r map[string]any) bool {
		return r["FirstName"] == "John" &&
			r["LastName"] == "Smith" &&
			r["Phone"] == "+17045551234" &&
			r["Phone_2__c"] == "" &&
			r["MailingCity"] == "CHARLOTTE" &&
			r["OwnerId"] == "005X"
	})).Return("003A", nil)

	id, err := NewSalesforce(sf, Settings{OwnerID: "005X"}).CreateContact(ctx, publish.Contact{
		FirstName: "John",
		LastName:  "Smith",
		City:      "CHARLOTTE",
		Phones:    []string{"+17045551234"},
	})
	require.NoError(t, err)
	assert.Equal(t, "003A", id)
	sf.AssertExpectations(t)
}

func TestCreateDeal(t *testing.T) {
	ctx := context.Background()
	sf := &mockSF{}
	sf.On("InsertOne", ctx, salesforce.SObjectOpportunity, mock.MatchedBy(func(r map[string]any) bool {
		return r["Name"] == "123 Main St" &&
			r["ContactId"] == "003A" &&
			r["StageName"] == "Qualification" &&
			r["CloseDate"] == "2026-11-17" &&
			r["Amount"] == 385000.0 &&
			r["Garage__c"] == true
	})).Return("006A", nil)

	c := NewSalesforce(sf, Settings{Stage: "Qualification", CloseInDays: 30})
	c.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	id, err := c.CreateDeal(ctx, "003A", publish.Deal{Name: "123 Main St", Amount: "385000", Garage: true})
	require.NoError(t, err)
	assert.Equal(t, "006A", id)
	sf.AssertExpectations(t)
}

func TestCreateDeal_EmptyAmountIsNil(t *testing.T) {
	ctx := context.Background()
	sf := &mockSF{}
	sf.On("InsertOne", ctx, salesforce.SObjectOpportunity, mock.MatchedBy(func(r map[string]any) bool {
		return r["Amount"] == nil && r["StageName"] == DefaultStage
	})).Return("006B", nil)

	_, err := NewSalesforce(sf, Settings{}).CreateDeal(ctx, "003A", publish.Deal{Name: "9 Oak Ln"})
	require.NoError(t, err)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	c := NewSalesforce(nil, Settings{})

	describe := func(fields map[string]any) *salesforce.SObjectDescription {
		d := &salesforce.SObjectDescription{}
		for name := range fields {
			d.Fields = append(d.Fields, salesforce.SObjectField{Name: name, Createable: true})
		}
		return d
	}

	contact := describe(c.contactFields(publish.Contact{}))
	deal := describe(c.dealFields(publish.Deal{}))
	deal.Fields = append(deal.Fields, salesforce.SObjectField{Name: "ContactId", Createable: true})

	t.Run("all present", func(t *testing.T) {
		sf := &mockSF{}
		sf.On("DescribeSObject", ctx, salesforce.SObjectContact).Return(contact, nil)
		sf.On("DescribeSObject", ctx, salesforce.SObjectOpportunity).Return(deal, nil)
		assert.NoError(t, NewSalesforce(sf, Settings{}).Verify(ctx))
	})

	t.Run("missing custom field", func(t *testing.T) {
		partial := &salesforce.SObjectDescription{Fields: []salesforce.SObjectField{{Name: "FirstName", Createable: true}}}
		sf := &mockSF{}
		sf.On("DescribeSObject", ctx, salesforce.SObjectContact).Return(partial, nil)
		err := NewSalesforce(sf, Settings{}).Verify(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Spouse_Name__c")
	})

	t.Run("describe error", func(t *testing.T) {
		sf := &mockSF{}
		sf.On("DescribeSObject", ctx, salesforce.SObjectContact).Return(nil, errors.New("down"))
		assert.Error(t, NewSalesforce(sf, Settings{}).Verify(ctx))
	})
}
