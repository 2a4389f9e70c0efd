package payments

import (
	"context"
	"math"
	"testing"

	"edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/application/tokens"
	"edutoken-backend/internal/application/treasury"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	student  = "ST1SJ3DTE5DN7X54YDH5D64R3BCB6A2AG2ZQ8YPD5"
	investor = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
)

type fixture struct {
	db       *gorm.DB
	registry *registry.Service
	tokens   *tokens.Service
	payments *Service
	treasury *treasury.Service
}

func setup(t *testing.T, feeBP int64) *fixture {
	db := testutil.OpenDB(t)
	return &fixture{
		db:       db,
		registry: &registry.Service{DB: db, Limits: registry.DefaultLimits()},
		tokens:   &tokens.Service{DB: db},
		payments: &Service{DB: db, FeeBP: feeBP},
		treasury: &treasury.Service{DB: db},
	}
}

// fundedISA creates a 5,000,000 ISA at 8% with a 3,000,000 minimum and sells it out.
func (f *fixture) fundedISA(t *testing.T, paymentCap int64) uint64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.registry.Create(ctx, student, registry.CreateInput{
		FundingAmount: 5_000_000,
		IncomeShareBP: 800,
		TermMonths:    120,
		MinIncome:     3_000_000,
		PaymentCap:    paymentCap,
	})
	require.NoError(t, err)
	_, err = f.tokens.Invest(ctx, id, investor, domain.TotalSupply)
	require.NoError(t, err)
	return id
}

func (f *fixture) totalPaid(t *testing.T, id uint64) int64 {
	t.Helper()
	isa, err := f.registry.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, isa)
	return isa.TotalPaid
}

func TestReportIncomeAndPay_EightPercent(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	id := f.fundedISA(t, 10_000_000)

	made, err := f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(480_000), made)
	assert.Equal(t, int64(480_000), f.totalPaid(t, id))

	report, err := f.payments.GetReport(ctx, id, 1)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, int64(6_000_000), report.ReportedIncome)
	assert.Equal(t, int64(480_000), report.PaymentDue)
	assert.Equal(t, int64(480_000), report.PaymentMade)
	assert.Equal(t, int64(0), report.PlatformFee)

	bal, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}

func TestReportIncomeAndPay_BelowMinimum(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	id := f.fundedISA(t, 10_000_000)

	_, err := f.payments.ReportIncomeAndPay(ctx, student, id, 2_500_000, 1)
	assert.ErrorIs(t, err, domain.ErrBelowMinimumIncome)

	report, err := f.payments.GetReport(ctx, id, 1)
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Equal(t, int64(0), f.totalPaid(t, id))
}

func TestReportIncomeAndPay_CapPreventsOverpayment(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	id := f.fundedISA(t, 6_000_000)

	made, err := f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(480_000), made)

	made, err = f.payments.ReportIncomeAndPay(ctx, student, id, 10_000_000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(800_000), made)
	assert.Equal(t, int64(1_280_000), f.totalPaid(t, id))
}

func TestReportIncomeAndPay_CapSafety(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()
	id := f.fundedISA(t, 5_000_000)

	var period int64
	for _, income := range []int64{30_000_000, 20_000_000, 10_000_000, 8_000_000, 50_000_000} {
		period++
		_, err := f.payments.ReportIncomeAndPay(ctx, student, id, income, period)
		require.NoError(t, err)
		assert.LessOrEqual(t, f.totalPaid(t, id), int64(5_000_000))
	}
	// 2.4M + 1.6M + 0.8M = 4.8M, then 200k left of the cap, then nothing.
	assert.Equal(t, int64(5_000_000), f.totalPaid(t, id))

	r4, err := f.payments.GetReport(ctx, id, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(640_000), r4.PaymentDue)
	assert.Equal(t, int64(200_000), r4.PaymentMade)

	made, err := f.payments.ReportIncomeAndPay(ctx, student, id, 50_000_000, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(0), made)

	reports, err := f.payments.ListReports(ctx, id)
	require.NoError(t, err)
	require.Len(t, reports, 6)
	assert.Equal(t, int64(1), reports[0].Period)
	assert.Equal(t, int64(6), reports[5].Period)
}

func TestReportIncomeAndPay_Rejections(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	_, err := f.payments.ReportIncomeAndPay(ctx, student, 77, 6_000_000, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id := f.fundedISA(t, 10_000_000)

	_, err = f.payments.ReportIncomeAndPay(ctx, investor, id, 6_000_000, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = f.payments.ReportIncomeAndPay(ctx, student, id, math.MaxInt64, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 1)
	require.NoError(t, err)
	_, err = f.payments.ReportIncomeAndPay(ctx, student, id, 9_000_000, 1)
	assert.ErrorIs(t, err, domain.ErrPeriodAlreadyReported)

	report, err := f.payments.GetReport(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000_000), report.ReportedIncome)
	assert.Equal(t, int64(480_000), f.totalPaid(t, id))
}

func TestReportIncomeAndPay_FeeCreditsTreasury(t *testing.T) {
	f := setup(t, 250)
	ctx := context.Background()
	id := f.fundedISA(t, 10_000_000)

	made, err := f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(480_000), made)
	assert.Equal(t, int64(480_000), f.totalPaid(t, id))

	report, err := f.payments.GetReport(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000), report.PlatformFee)

	bal, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000), bal)

	var fees int64
	require.NoError(t, f.db.Model(&domain.LedgerEvent{}).Where("type = ?", domain.EventFee).Count(&fees).Error)
	assert.Equal(t, int64(1), fees)
}

func TestReportIncomeAndPay_FeeOutOfRange(t *testing.T) {
	for _, feeBP := range []int64{-500, 25_000} {
		f := setup(t, feeBP)
		ctx := context.Background()
		id := f.fundedISA(t, 10_000_000)

		_, err := f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 1)
		require.Error(t, err, "fee %d", feeBP)

		report, err := f.payments.GetReport(ctx, id, 1)
		require.NoError(t, err)
		assert.Nil(t, report)
		assert.Equal(t, int64(0), f.totalPaid(t, id))
		bal, err := f.treasury.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), bal)
	}
}

func TestReportIncomeAndPay_FullFeeNeverExceedsPayment(t *testing.T) {
	f := setup(t, domain.BasisPoints)
	ctx := context.Background()
	id := f.fundedISA(t, 10_000_000)

	made, err := f.payments.ReportIncomeAndPay(ctx, student, id, 6_000_000, 1)
	require.NoError(t, err)
	bal, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, made, bal)
}

func TestPreview(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	_, err := f.payments.Preview(ctx, 1, 5_000_000)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	id := f.fundedISA(t, 6_000_000)
	amount, err := f.payments.Preview(ctx, id, 5_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), amount)

	// below the minimum income and past the cap still previews the raw share
	amount, err = f.payments.Preview(ctx, id, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(80_000), amount)
	amount, err = f.payments.Preview(ctx, id, 500_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000_000), amount)

	_, err = f.payments.Preview(ctx, id, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	assert.Equal(t, int64(0), f.totalPaid(t, id))
}

func TestReadOnlyAccessors(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	next, err := f.registry.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)

	id := f.fundedISA(t, 10_000_000)
	next, err = f.registry.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)

	amount, err := f.payments.Preview(ctx, id, 5_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), amount)

	bal, err := f.treasury.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}
