package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve"
)

// reportDocument is what gets indexed for each wastewater report
type reportDocument struct {
	Vendor string `json:"vendor"`
	Status string `json:"status"`
	Items  string `json:"items"`
}

// SetupSearchDB sets up new bleve or opens existing. An empty path gives an
// in-memory index.
func SetupSearchDB(path string) (bleve.Index, error) {
	mapping := bleve.NewIndexMapping()
	if path == "" {
		Logger.Info("Creating in-memory bleve index")
		return bleve.NewMemOnly(mapping)
	}
	path = filepath.Clean(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		Logger.Info("Creating new bleve index", "path", path)
		index, err := bleve.New(path, mapping)
		if err != nil {
			Logger.Error("Failed to create bleve index", "error", err)
			return nil, err
		}
		return index, nil
	}
	Logger.Info("Opening existing bleve index", "path", path)
	index, err := bleve.Open(path)
	if err != nil {
		Logger.Error("Failed to open bleve index", "error", err)
		return nil, err
	}
	return index, nil
}

func toDocument(report WastewaterReport) reportDocument {
	items := make([]string, 0, len(report.Items))
	for _, item := range report.Items {
		items = append(items, strings.TrimSpace(item.ItemName+" "+item.Unit+" "+item.Standard))
	}
	return reportDocument{
		Vendor: report.Vendor,
		Status: report.Status,
		Items:  strings.Join(items, "\n"),
	}
}

// IndexReport adds or replaces a report in the search index
func IndexReport(index bleve.Index, report WastewaterReport) error {
	return index.Index(strconv.FormatInt(report.ID, 10), toDocument(report))
}

// ReindexReports indexes every given report in one batch
func ReindexReports(index bleve.Index, reports []WastewaterReport) error {
	batch := index.NewBatch()
	for _, report := range reports {
		if err := batch.Index(strconv.FormatInt(report.ID, 10), toDocument(report)); err != nil {
			return err
		}
	}
	return index.Batch(batch)
}

// SearchReports returns the IDs of reports matching term, best match first.
// A term containing whitespace is searched as a phrase.
func SearchReports(index bleve.Index, term string, limit int) ([]int64, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	var request *bleve.SearchRequest
	if strings.IndexFunc(term, unicode.IsSpace) >= 0 {
		Logger.Debug("Found space in search term, converting to phrase", "searchTerm", term)
		request = bleve.NewSearchRequestOptions(bleve.NewMatchPhraseQuery(term), limit, 0, false)
	} else {
		request = bleve.NewSearchRequestOptions(bleve.NewMatchQuery(term), limit, 0, false)
	}
	result, err := index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	ids := make([]int64, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			Logger.Warn("Skipping search hit with bad id", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
