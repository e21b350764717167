package webapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Sample represents a production line sample from the API
type Sample struct {
	ID          int64     `json:"id"`
	LineName    string    `json:"line_name"`
	ProductName string    `json:"product_name"`
	Timestamp   time.Time `json:"timestamp"`
	MetricA     *float64  `json:"metric_a"`
	MetricB     *float64  `json:"metric_b"`
	Operator    string    `json:"operator"`
}

// Pagination mirrors the paging block of list endpoints
type Pagination struct {
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// SamplePage is one page of samples
type SamplePage struct {
	Data       []Sample   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// MainMetrics are the dashboard aggregates
type MainMetrics struct {
	TotalRecords     int64      `json:"total_records"`
	AvgMetricA       float64    `json:"avg_metric_a"`
	AvgMetricB       float64    `json:"avg_metric_b"`
	LatestRecordTime *time.Time `json:"latest_record_time"`
}

// ChartDataset is one line of the comparison chart
type ChartDataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BorderColor     string     `json:"borderColor"`
	BackgroundColor string     `json:"backgroundColor"`
}

// LineComparison is the analysis chart data
type LineComparison struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ReportItem is one measured parameter of a wastewater report
type ReportItem struct {
	ID          int64   `json:"id,omitempty"`
	ItemName    string  `json:"item_name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Standard    string  `json:"standard"`
	IsCompliant bool    `json:"is_compliant"`
}

// Report is a wastewater test report
type Report struct {
	ID         int64        `json:"id,omitempty"`
	ReportDate time.Time    `json:"report_date"`
	Vendor     string       `json:"vendor"`
	Status     string       `json:"status"`
	Items      []ReportItem `json:"items"`
}

const tokenKey = "access_token"

// storedToken returns the access token kept in local storage, if any
func storedToken() string {
	if !app.IsClient {
		return ""
	}
	v := app.Window().Get("localStorage").Call("getItem", tokenKey)
	if !v.Truthy() {
		return ""
	}
	return v.String()
}

// apiError turns a failed response into an error, preferring the message
// the server put in the body.
func apiError(status int, body string) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(body), &payload) == nil {
		if payload.Error != "" {
			return fmt.Errorf("%s (%d)", payload.Error, status)
		}
		if payload.Message != "" {
			return fmt.Errorf("%s (%d)", payload.Message, status)
		}
	}
	return fmt.Errorf("request failed: %d %s", status, http.StatusText(status))
}

var errNetwork = errors.New("network error: could not connect to server")

// fetchJSON calls the API with the browser's fetch, decodes a successful
// JSON reply into out and calls done on the UI goroutine.
func fetchJSON(ctx app.Context, method, url string, body, out any, done func(err error)) {
	if !app.IsClient {
		return
	}
	headers := map[string]any{"Accept": "application/json"}
	opts := map[string]any{"method": method}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			done(err)
			return
		}
		headers["Content-Type"] = "application/json"
		opts["body"] = string(b)
	}
	if token := storedToken(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	opts["headers"] = headers

	ctx.Async(func() {
		res := app.Window().Call("fetch", url, opts)

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()

			response.Call("text").Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
				text := ""
				if len(args) > 0 {
					text = args[0].String()
				}
				ctx.Dispatch(func(ctx app.Context) {
					switch {
					case status < 200 || status >= 300:
						done(apiError(status, text))
					case out != nil && text != "":
						done(json.Unmarshal([]byte(text), out))
					default:
						done(nil)
					}
				})
				return nil
			}))

			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			ctx.Dispatch(func(ctx app.Context) {
				done(errNetwork)
			})
			return nil
		}))
	})
}
