package output

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/process"
)

// chartSeries derives bar labels and values from a result set.
// When the last column is numeric the bars are first column against that number, skipping the
// Total row. Otherwise rows are counted per distinct value of the last column.
func chartSeries(rs *models.ResultSet) (series string, labels []string, values []int) {
	if len(rs.Header) == 0 {
		return "", nil, nil
	}
	last := len(rs.Header) - 1

	if numericColumn(rs, last) {
		for _, r := range rs.Rows {
			if r[0] == process.TotalLabel {
				continue
			}
			n, _ := strconv.Atoi(r[last])
			labels = append(labels, r[0])
			values = append(values, n)
		}
		return rs.Header[last], labels, values
	}

	index := make(map[string]int)
	for _, r := range rs.Rows {
		label := r[last]
		if label == "" {
			label = "(none)"
		}
		i, seen := index[label]
		if !seen {
			i = len(labels)
			index[label] = i
			labels = append(labels, label)
			values = append(values, 0)
		}
		values[i]++
	}
	return "Rows", labels, values
}

func numericColumn(rs *models.ResultSet, col int) bool {
	if len(rs.Rows) == 0 {
		return false
	}
	for _, r := range rs.Rows {
		if _, err := strconv.Atoi(r[col]); err != nil {
			return false
		}
	}
	return true
}

// renderChart writes a standalone HTML page with a bar chart of rs
func renderChart(w io.Writer, name string, rs *models.ResultSet) error {
	series, labels, values := chartSeries(rs)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "pydoc-parser: " + name}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: series}),
	)
	data := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		data = append(data, opts.BarData{Value: v})
	}
	bar.SetXAxis(labels).AddSeries(series, data)
	return bar.Render(w)
}
