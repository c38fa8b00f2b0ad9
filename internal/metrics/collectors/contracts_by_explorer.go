package collectors

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
)

const ContractsByExplorerQuery = `
	SELECT source, COUNT(*), COUNT(*) FILTER (WHERE partial_match)
	FROM contract_metadata
	GROUP BY source
	ORDER BY source`

// ContractsByExplorerCollector breaks stored contracts down by the explorer
// that supplied their metadata.
type ContractsByExplorerCollector struct {
	db           *sql.DB
	count        *prometheus.Desc
	partialCount *prometheus.Desc
}

func NewContractsByExplorerCollector(db *sql.DB) *ContractsByExplorerCollector {
	return &ContractsByExplorerCollector{
		db: db,
		count: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "contracts", "by_explorer"),
			"Contracts with stored metadata per explorer",
			[]string{"explorer"},
			prometheus.Labels{"store": "postgres"},
		),
		partialCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "contracts", "partial_match_by_explorer"),
			"Contracts whose metadata is only a partial match, per explorer",
			[]string{"explorer"},
			prometheus.Labels{"store": "postgres"},
		),
	}
}

func (c *ContractsByExplorerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.count
	ch <- c.partialCount
}

func (c *ContractsByExplorerCollector) Collect(ch chan<- prometheus.Metric) {
	rows, err := c.db.Query(ContractsByExplorerQuery)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.count, err)
		ch <- prometheus.NewInvalidMetric(c.partialCount, err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			explorer       string
			count, partial int64
		)
		if err := rows.Scan(&explorer, &count, &partial); err != nil {
			ch <- prometheus.NewInvalidMetric(c.count, err)
			return
		}
		ch <- prometheus.MustNewConstMetric(c.count, prometheus.GaugeValue, float64(count), explorer)
		ch <- prometheus.MustNewConstMetric(c.partialCount, prometheus.GaugeValue, float64(partial), explorer)
	}
	if err := rows.Err(); err != nil {
		ch <- prometheus.NewInvalidMetric(c.count, err)
	}
}

func init() {
	RegisterCollectorFactory(func(db *sql.DB) (prometheus.Collector, error) {
		return NewContractsByExplorerCollector(db), nil
	})
}
