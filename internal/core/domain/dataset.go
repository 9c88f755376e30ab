package domain

// MinColumns is the narrowest table the pipeline accepts.
const MinColumns = 2

// UploadedDataset is the raw upload as received from the client. It is only
// held for the duration of one request.
type UploadedDataset struct {
	Filename string
	Content  []byte
}

// TabularDataset is a parsed CSV with a header row. Every row has exactly
// len(Header) fields.
type TabularDataset struct {
	Header     []string
	Rows       [][]string
	SourcePath string
}

func (d *TabularDataset) ColumnCount() int {
	return len(d.Header)
}

func (d *TabularDataset) RowCount() int {
	return len(d.Rows)
}

// Column returns the values of column i across all rows.
func (d *TabularDataset) Column(i int) []string {
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		values = append(values, row[i])
	}
	return values
}
