package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/kkkkikiki/loyalty/internal/api/loyaltyv1"
	"github.com/kkkkikiki/loyalty/internal/model"
)

const dateLayout = "2006-01-02"

// Money columns are NUMERIC(14,2).
const moneyScale = 2

var maxAmount = decimal.New(1, 14-moneyScale)

// parseAmount reads a decimal money string. Blank input yields zero when
// optional, otherwise an invalid argument error. Values that would not fit
// a NUMERIC(14,2) column exactly are rejected rather than rounded.
func parseAmount(field, s string, optional bool) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if optional {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a decimal number", ErrInvalidArgument, field, s)
	}
	if !d.Equal(d.Truncate(moneyScale)) {
		return decimal.Zero, fmt.Errorf("%w: %s %q has more than %d decimal places", ErrInvalidArgument, field, s, moneyScale)
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s %q is out of range", ErrInvalidArgument, field, s)
	}
	return d, nil
}

func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidArgument, field)
	}
	return &d, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func toTierModel(in *v1.Tier) (model.Tier, error) {
	if in == nil {
		return model.Tier{}, fmt.Errorf("%w: tier is required", ErrInvalidArgument)
	}
	minSpend, err := parseAmount("min_spend", in.MinSpend, false)
	if err != nil {
		return model.Tier{}, err
	}
	t := model.Tier{
		ID:               in.Id,
		Name:             in.Name,
		MinSpend:         minSpend,
		RankOrder:        int(in.RankOrder),
		EvaluationPeriod: model.EvaluationPeriod(strings.ToLower(strings.TrimSpace(in.EvaluationPeriod))),
		IsActive:         in.IsActive,
		Benefits:         make([]model.Benefit, 0, len(in.Benefits)),
	}
	for _, b := range in.Benefits {
		t.Benefits = append(t.Benefits, model.Benefit{Title: b.Title, Description: b.Description})
	}
	return t, nil
}

func toTierMessage(t *model.Tier) v1.Tier {
	return v1.Tier{
		Id:               t.ID,
		Name:             t.Name,
		MinSpend:         t.MinSpend.String(),
		RankOrder:        int32(t.RankOrder),
		EvaluationPeriod: string(t.EvaluationPeriod),
		IsActive:         t.IsActive,
		Benefits:         toBenefitMessages(t.Benefits),
	}
}

func toBenefitMessages(in []model.Benefit) []v1.Benefit {
	out := make([]v1.Benefit, 0, len(in))
	for _, b := range in {
		out = append(out, v1.Benefit{Id: b.ID, Title: b.Title, Description: b.Description})
	}
	return out
}

func toCustomerMessage(c *model.Customer, tierName string, totalSpend decimal.Decimal) *v1.Customer {
	msg := &v1.Customer{
		Id:         c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		TierName:   tierName,
		TotalSpend: totalSpend.String(),
		CreatedAt:  c.CreatedAt,
	}
	if c.DateOfBirth != nil {
		msg.DateOfBirth = formatDate(*c.DateOfBirth)
	}
	return msg
}

func toCustomerSummaryMessage(s *model.CustomerSummary) *v1.Customer {
	name := model.UnassignedName
	if s.TierName != nil {
		name = *s.TierName
	}
	return toCustomerMessage(&s.Customer, name, s.TotalSpend)
}

func toTransactionMessage(t *model.Transaction) *v1.Transaction {
	return &v1.Transaction{
		Id:         t.ID,
		CustomerId: t.CustomerID,
		Amount:     t.Amount.String(),
		Kind:       string(t.Kind),
		Reference:  t.Reference,
		CreatedAt:  t.CreatedAt,
	}
}

func toAssignmentMessage(a *model.Assignment) *v1.Assignment {
	if a == nil {
		return nil
	}
	return &v1.Assignment{
		Id:              a.ID,
		CustomerId:      a.CustomerID,
		TierId:          a.TierID,
		TierName:        a.TierName,
		TotalSpend:      a.TotalSpend.String(),
		PeriodStart:     formatDate(a.PeriodStart),
		PeriodEnd:       formatDate(a.PeriodEnd),
		LastEvaluatedAt: a.LastEvaluatedAt,
	}
}
