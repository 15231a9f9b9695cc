// Package profit rolls instruments and ledger records up into spread and profit figures.
// Snapshots are derived on every call and never cached.
package profit

import (
	"time"

	"github.com/shopspring/decimal"

	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/loan"
)

type MonthlyProfit struct {
	Month     string          `json:"month"` // YYYY-MM
	Collected decimal.Decimal `json:"collected"`
	Paid      decimal.Decimal `json:"paid"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

type Snapshot struct {
	TotalInvestedFunds      decimal.Decimal `json:"totalInvestedFunds"`
	TotalDeployedFunds      decimal.Decimal `json:"totalDeployedFunds"`
	TotalInterestReceivable decimal.Decimal `json:"totalInterestReceivable"`
	TotalInterestPayable    decimal.Decimal `json:"totalInterestPayable"`
	NetSpreadProfit         decimal.Decimal `json:"netSpreadProfit"`
	InterestCollected       decimal.Decimal `json:"interestCollected"`
	InterestPaid            decimal.Decimal `json:"interestPaid"`
	RealizedProfit          decimal.Decimal `json:"realizedProfit"`
	AvgBorrowerRate         decimal.Decimal `json:"avgBorrowerRate"`
	AvgInvestorRate         decimal.Decimal `json:"avgInvestorRate"`
	AvgSpread               decimal.Decimal `json:"avgSpread"`
	ActiveLoans             int             `json:"activeLoans"`
	ActiveInvestments       int             `json:"activeInvestments"`
	MonthlyProfit           []MonthlyProfit `json:"monthlyProfit"`
}

type Input struct {
	// Loans and Investments in any status; the aggregator filters Active where a figure needs it.
	Loans       []loan.BorrowerLoan
	Investments []investment.InvestorInvestment
	Records     []ledger.Record
	// Months is the length of the trailing series ending with Now's month.
	Months int
	Now    time.Time
}

// Aggregate computes the snapshot. Average rates are plain means over Active instruments, not
// weighted by amount.
func Aggregate(in Input) Snapshot {
	s := Snapshot{}

	var borrowerRates, investorRates []decimal.Decimal
	for _, l := range in.Loans {
		s.TotalDeployedFunds = s.TotalDeployedFunds.Add(l.ApprovedAmount)
		if l.Status != loan.StatusActive {
			continue
		}
		s.ActiveLoans++
		s.TotalInterestReceivable = s.TotalInterestReceivable.Add(l.TotalInterest)
		borrowerRates = append(borrowerRates, l.InterestRate)
	}
	for _, v := range in.Investments {
		s.TotalInvestedFunds = s.TotalInvestedFunds.Add(v.InvestedAmount)
		if v.Status != investment.StatusActive {
			continue
		}
		s.ActiveInvestments++
		s.TotalInterestPayable = s.TotalInterestPayable.Add(v.TotalInterest)
		investorRates = append(investorRates, v.InterestRate)
	}
	s.NetSpreadProfit = s.TotalInterestReceivable.Sub(s.TotalInterestPayable)

	for _, r := range in.Records {
		switch r.Kind {
		case ledger.KindCollection:
			s.InterestCollected = s.InterestCollected.Add(r.Interest)
		case ledger.KindPayout:
			s.InterestPaid = s.InterestPaid.Add(r.Interest)
		}
	}
	s.RealizedProfit = s.InterestCollected.Sub(s.InterestPaid)

	s.AvgBorrowerRate = mean(borrowerRates)
	s.AvgInvestorRate = mean(investorRates)
	s.AvgSpread = s.AvgBorrowerRate.Sub(s.AvgInvestorRate)
	s.MonthlyProfit = Monthly(in.Records, in.Months, in.Now)
	return s
}

// Monthly buckets realised interest by calendar month (UTC) for the trailing n months, oldest
// first. Records outside the window are ignored.
func Monthly(records []ledger.Record, n int, now time.Time) []MonthlyProfit {
	if n <= 0 {
		return []MonthlyProfit{}
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month()-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)

	out := make([]MonthlyProfit, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlyProfit{Month: key}
		index[key] = i
	}
	for _, r := range records {
		i, ok := index[r.PaidAt.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		switch r.Kind {
		case ledger.KindCollection:
			out[i].Collected = out[i].Collected.Add(r.Interest)
		case ledger.KindPayout:
			out[i].Paid = out[i].Paid.Add(r.Interest)
		}
	}
	for i := range out {
		out[i].NetProfit = out[i].Collected.Sub(out[i].Paid)
	}
	return out
}

func mean(xs []decimal.Decimal) decimal.Decimal {
	if len(xs) == 0 {
		return decimal.Zero
	}
	return decimal.Avg(xs[0], xs[1:]...).Round(4)
}
