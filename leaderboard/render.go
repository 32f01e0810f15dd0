package leaderboard

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"time"
)

// Version is shown in the leaderboard page banner
const Version = "1.1"

// pageTmpl renders the whole leaderboard page. The sorttable.js script makes
// every column header clickable for re-sorting in the browser.
var pageTmpl = template.Must(template.New("leaderboard").Parse(`<html>
<head>
  <title>Project Leaderboard</title>
  <META HTTP-EQUIV="expires" CONTENT="0">
  <script src="sorttable.js"></script>
  <style type="text/css">
    body {
    font-family: helvetica, sans-serif;
    font-size: 12px;
    }

    h1 {
    letter-spacing: -1px;
    font-size: 25px;
    }

    h4 {
    font-size: 14px;
    font-style: italic;
    }

    table {
    text-align: center;
    font-size: 1.2em;
    margin: 15px auto;
    border: 1px solid black;
    }
    table th {
    color: white;
    background-color: #034769;
    padding: 2px 5px;
    }
    table td {
    padding: 2px 5px;
    }
  </style>
</head>
<body>
<h1>Leaderboard for {{.Title}}</h1>
<h4>Updated: {{.Updated}}, version {{.Version}}</h4>
<p>Click on the header of any column to sort by that column.</p>
<table class="sortable">
<tr>
  <th>Group Name</th>
  <th>Time Submitted</th>
  <th>Accuracy</th>
  <th>RMSE</th>
  <th>Best RMSE</th>
</tr>
{{range .Rows}}<tr>
  <td>{{.Name}}</td>
  <td>{{.Submitted}}</td>
  <td>{{.Accuracy}}</td>
  <td>{{.RMSE}}</td>
  <td>{{.BestRMSE}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

// pageRow is one rendered leaderboard line
type pageRow struct {
	Name      string
	Submitted string
	Accuracy  string
	RMSE      string
	BestRMSE  string
}

// Render writes the leaderboard page for the given records, sorted ascending
// by best quiz RMSE so the current leader is on top
func Render(path, title string, records map[string]Record) error {
	sorted := []Record{}
	for _, record := range records {
		sorted = append(sorted, record)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BestRMSE() < sorted[j].BestRMSE()
	})

	rows := []pageRow{}
	for _, record := range sorted {
		rows = append(rows, pageRow{
			Name:      record.Name,
			Submitted: record.Submitted.Format(time.RFC1123),
			Accuracy:  fmt.Sprintf("%.2f%%", record.Accuracy[QuizSet]*100),
			RMSE:      fmt.Sprintf("%.4f", record.RMSE[QuizSet]),
			BestRMSE:  fmt.Sprintf("%.4f", record.BestRMSE()),
		})
	}

	pageFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create leaderboard page %s: %s",
			path, err.Error())
	}
	defer pageFile.Close()

	err = pageTmpl.Execute(pageFile, map[string]interface{}{
		"Title":   title,
		"Updated": time.Now().Format(time.RFC1123),
		"Version": Version,
		"Rows":    rows,
	})
	if err != nil {
		return fmt.Errorf("failed to render leaderboard page %s: %s",
			path, err.Error())
	}

	return nil
}
