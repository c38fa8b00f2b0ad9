package collectors

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

const ContractsTotalCountQuery = `SELECT COUNT(*) FROM contract_metadata`

// ContractsTotalCountCollector reports how many contracts the store holds metadata for.
type ContractsTotalCountCollector struct {
	db         *sql.DB
	totalCount *prometheus.Desc
}

func NewContractsTotalCountCollector(db *sql.DB) *ContractsTotalCountCollector {
	return &ContractsTotalCountCollector{
		db: db,
		totalCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "contracts", "total_count"),
			"Total number of contracts with stored metadata",
			nil,
			prometheus.Labels{"store": "postgres"},
		),
	}
}

func (c *ContractsTotalCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalCount
}

func (c *ContractsTotalCountCollector) Collect(ch chan<- prometheus.Metric) {
	var count int64
	err := c.db.QueryRow(ContractsTotalCountQuery).Scan(&count)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.totalCount, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.totalCount, prometheus.GaugeValue, float64(count))
}

func init() {
	RegisterCollectorFactory(func(db *sql.DB) (prometheus.Collector, error) {
		return NewContractsTotalCountCollector(db), nil
	})
}
