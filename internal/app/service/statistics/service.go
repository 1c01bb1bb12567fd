package statistics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/types"
)

var ErrInvalidRequest = errors.New("statistics: invalid request")

type StatisticType string

const (
	// registrations accepted by SagePay, per day
	StatisticTypeDailyTransactionCount StatisticType = "daily_transaction_count"
	// authentic notifications per day, labelled by status
	StatisticTypeDailyOutcomeCount StatisticType = "daily_outcome_count"
	// authorised amount per day and currency, in minor units
	StatisticTypeDailyGmv StatisticType = "daily_gmv"
	StatisticTypeTotalGmv StatisticType = "total_gmv"
	// value is authorised/registered in basis points, value2 registered, value3 authorised
	StatisticTypeDailyConversionRate StatisticType = "daily_conversion_rate"
)

// Filter fields that are not sagepay_transaction columns.
type PaymentStatisticFilterType string

const (
	PaymentStatisticFilterTypeStatus   PaymentStatisticFilterType = "status"
	PaymentStatisticFilterTypeSaveCard PaymentStatisticFilterType = "save_card"
)

var filterTypes = []PaymentStatisticFilterType{
	PaymentStatisticFilterTypeStatus,
	PaymentStatisticFilterTypeSaveCard,
}

var validFilters = map[PaymentStatisticFilterType][]StatisticType{
	PaymentStatisticFilterTypeStatus:   {StatisticTypeDailyTransactionCount},
	PaymentStatisticFilterTypeSaveCard: {StatisticTypeDailyTransactionCount, StatisticTypeDailyGmv, StatisticTypeDailyOutcomeCount},
}

type PaymentStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type PaymentStatisticRequest struct {
	Filters   []*types.CommonFilter       `json:"filters"`
	DataItems []*PaymentStatisticDataItem `json:"data_items"`
}

// Validate rejects filters on anything but known columns and special
// filter fields, since field names end up in SQL.
func (f *PaymentStatisticRequest) Validate() error {
	if f == nil || len(f.DataItems) == 0 {
		return fmt.Errorf("%w: no data items", ErrInvalidRequest)
	}
	for _, filter := range f.Filters {
		if lo.Contains(filterTypes, PaymentStatisticFilterType(filter.Field)) {
			continue
		}
		if !types.IsFilterableColumn(filter.Field) {
			return fmt.Errorf("%w: unsupported filter field %q", ErrInvalidRequest, filter.Field)
		}
	}
	return nil
}

// GetFilters keeps the filters that apply to statisticType.
func (f *PaymentStatisticRequest) GetFilters(statisticType StatisticType) *PaymentStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	var result PaymentStatisticRequest
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[PaymentStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause over sagepay_transaction. status matches
// the authentic notification of the row.
func (f *PaymentStatisticRequest) Build(builder clause.Builder) {
	if len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		switch filter.Field {
		case string(PaymentStatisticFilterTypeStatus):
			clause.Expr{
				SQL:  "id IN (SELECT transaction_id FROM sagepay_notification_result WHERE hash_match AND status IN ?)",
				Vars: []any{filter.Values},
			}.Build(builder)
		case string(PaymentStatisticFilterTypeSaveCard):
			if len(filter.Values) > 0 && fmt.Sprint(filter.Values[0]) == "true" {
				builder.WriteString("save_card = true")
			} else {
				builder.WriteString("save_card = false")
			}
		default:
			filter.Build(builder)
		}
	}
}

type PaymentStatisticResponseDataItem struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Value2 int64  `json:"value2,omitempty"`
	Value3 int64  `json:"value3,omitempty"`
}

type PaymentStatisticResponse struct {
	DataItems map[StatisticType][]PaymentStatisticResponseDataItem `json:"data_items"`
}

// Service aggregates the payment tables for the admin dashboard.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

const authorisedSubquery = "id IN (SELECT transaction_id FROM sagepay_notification_result WHERE hash_match AND status = 'OK')"

func (s *Service) transactions(ctx context.Context, request *PaymentStatisticRequest) *gorm.DB {
	return s.db.WithContext(ctx).Table((models.Transaction{}).TableName()).
		Where(clause.Where{Exprs: []clause.Expression{request}})
}

func (s *Service) getDailyTransactionCount(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	q := s.transactions(ctx, request.GetFilters(StatisticTypeDailyTransactionCount)).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("vps_tx_id IS NOT NULL").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyOutcomeCount(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	sub := s.transactions(ctx, request.GetFilters(StatisticTypeDailyOutcomeCount)).Select("id")
	q := s.db.WithContext(ctx).Table((models.NotificationResult{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, status as label, count(*) as value").
		Where("hash_match").
		Where("transaction_id IN (?)", sub).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("status").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyGmv(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	q := s.transactions(ctx, request.GetFilters(StatisticTypeDailyGmv)).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, CAST(SUM(amount) * 100 AS BIGINT) as value").
		Where(authorisedSubquery).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalGmv(ctx context.Context, _ *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH authorised AS (
    SELECT * FROM sagepay_transaction WHERE ` + authorisedSubquery + `
),
min_max_dates AS (
    SELECT MIN(DATE(created_at)) as min_date, MAX(DATE(created_at)) as max_date FROM authorised
),
dates AS (
    SELECT TO_CHAR(generate_series(min_date, max_date, '1 day'::interval), 'YYYY-MM-DD') as date FROM min_max_dates
),
currencies AS (
    SELECT DISTINCT currency as label FROM authorised
),
gmv_date AS (
    SELECT d.date, c.label, COALESCE(CAST(SUM(t.amount) * 100 AS BIGINT), 0) as value
    FROM dates d
    CROSS JOIN currencies c
    LEFT JOIN authorised t
      ON TO_CHAR(t.created_at, 'YYYY-MM-DD') = d.date
     AND t.currency = c.label
    GROUP BY d.date, c.label
)
SELECT d.date as date, d.label as label, SUM(s.value) as value
FROM gmv_date d
LEFT JOIN gmv_date s ON s.date <= d.date AND s.label = d.label
GROUP BY d.date, d.label
ORDER BY d.date DESC, d.label ASC
`).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyConversionRate(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	q := s.transactions(ctx, request.GetFilters(StatisticTypeDailyConversionRate)).
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date,
  CAST(COUNT(*) FILTER (WHERE ` + authorisedSubquery + `) * 10000 / COUNT(*) AS BIGINT) as value,
  COUNT(*) as value2,
  COUNT(*) FILTER (WHERE ` + authorisedSubquery + `) as value3`).
		Where("vps_tx_id IS NOT NULL").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPaymentStatistic(ctx context.Context, request *PaymentStatisticRequest, dataItem *PaymentStatisticDataItem) ([]PaymentStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyTransactionCount:
		return s.getDailyTransactionCount(ctx, request)
	case StatisticTypeDailyOutcomeCount:
		return s.getDailyOutcomeCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypeDailyConversionRate:
		return s.getDailyConversionRate(ctx, request)
	default:
		return nil, fmt.Errorf("%w: invalid data item id: %s", ErrInvalidRequest, dataItem.ID)
	}
}

// applies reports whether every special filter in request applies to id.
func (f *PaymentStatisticRequest) applies(id StatisticType) bool {
	for _, filter := range f.Filters {
		ft := PaymentStatisticFilterType(filter.Field)
		if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], id) {
			return false
		}
	}
	return true
}

// GetDailyPaymentStatistic computes the requested data items concurrently.
// Items a special filter does not apply to come back empty.
func (s *Service) GetDailyPaymentStatistic(ctx context.Context, request *PaymentStatisticRequest) (*PaymentStatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []PaymentStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *PaymentStatisticDataItem) {
			defer wg.Done()
			if !request.applies(di.ID) {
				resChan <- &lo.Entry[StatisticType, []PaymentStatisticResponseDataItem]{Key: di.ID, Value: nil}
				return
			}
			res, err := s.getPaymentStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []PaymentStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	wg.Wait()
	close(errChan)
	close(resChan)
	if err := <-errChan; err != nil {
		return nil, err
	}

	results := make(map[StatisticType][]PaymentStatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &PaymentStatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
