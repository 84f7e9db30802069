package stats

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/aaakoako/reduce-gpt-tokens/corpus"
)

type bqStatsRow struct {
	RunAt         time.Time
	SourceRoot    string
	Syntax        string
	FileCount     int
	OriginalBytes int
	CleanedBytes  int
}

func bqRows(runAt time.Time, sourceRoot string, rows []corpus.StatsRow) []bqStatsRow {
	out := make([]bqStatsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, bqStatsRow{
			RunAt:         runAt,
			SourceRoot:    sourceRoot,
			Syntax:        r.Syntax,
			FileCount:     r.Files,
			OriginalBytes: r.OriginalBytes,
			CleanedBytes:  r.CleanedBytes,
		})
	}
	return out
}

// UploadBigQuery replaces the contents of project.dataset.table with rows.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
func UploadBigQuery(ctx context.Context, project string, dataset string, table string, sourceRoot string, rows []corpus.StatsRow) error {
	if len(rows) == 0 {
		log.Printf("no rows. not uploading to bigquery")
		return nil
	}

	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := deleteAndRecreateBQ(ctx, client, dataset, table, bqStatsRow{}); err != nil {
		return err
	}

	log.Printf("about to upload data\n")
	return client.Dataset(dataset).Table(table).Inserter().Put(ctx, bqRows(time.Now().UTC(), sourceRoot, rows))
}

func deleteAndRecreateBQ(ctx context.Context, client *bigquery.Client, dsName string, tableName string, example interface{}) error {
	tab := client.Dataset(dsName).Table(tableName)

	_, err := tab.Metadata(ctx)
	if err != nil {
		if !strings.Contains(err.Error(), "notFound") {
			return err
		}
		log.Printf("about to create table %s\n", tableName)
		s, err := bigquery.InferSchema(example)
		if err != nil {
			return err
		}
		return tab.Create(ctx, &bigquery.TableMetadata{Schema: s})
	}

	log.Printf("about to clear table %s\n", tableName)
	q := client.Query(fmt.Sprintf("DELETE FROM %s.%s where 1=1", dsName, tableName))
	q.UseLegacySQL = false
	j, err := q.Run(ctx)
	if err != nil {
		return err
	}
	status, err := j.Wait(ctx)
	if err != nil {
		return err
	}
	if err := status.Err(); err != nil {
		return err
	}
	log.Printf("cleared table %s\n", tableName)
	return nil
}
