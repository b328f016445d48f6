// Package duckdb persists one run's mutation records to a queryable
// DuckDB database, so a completed run can be inspected without
// re-parsing VCF/FASTA input. Adapted from the VEP cache's DuckDB store:
// same open/schema/close shape, repurposed schema. Bulk loads go through
// go-duckdb's Appender API instead of row-by-row INSERT, and the
// per-sample report query reads its result set back as Arrow record
// batches instead of database/sql Scan.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	duckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for persisting run results.
type Store struct {
	db        *sql.DB
	connector *duckdb.Connector
	path      string
}

// Open opens or creates a DuckDB database at the given path. Use an
// empty string for an in-memory database (useful in tests).
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create report directory: %w", err)
		}
	}

	connector, err := duckdb.NewConnector(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open duckdb connector: %w", err)
	}

	s := &Store{db: sql.OpenDB(connector), connector: connector, path: path}
	if err := s.ensureSchema(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS mutation_records (
		sample VARCHAR,
		haplotype TINYINT,
		transcript_id VARCHAR,
		kind VARCHAR,
		ref_pos BIGINT,
		mut_pos BIGINT,
		opcode VARCHAR,
		edited_length BIGINT,
		PRIMARY KEY (sample, haplotype, transcript_id, ref_pos)
	)`)
	return err
}

// MutationRecord is one row of the mutation_records table: a single
// compiled Instruction's provenance, kept after the GIR itself is
// discarded at the end of a run.
type MutationRecord struct {
	Sample       string
	Haplotype    int // 1 or 2
	TranscriptID string
	Kind         string
	RefPos       int
	MutPos       int
	Opcode       string
	EditedLength int // the transcript's predicted edited length (Step B's L')
}

// WriteMutationRecords bulk-loads records through the Appender API,
// which amortizes far better than per-row INSERT across a whole-VCF
// run's mutation volume.
func (s *Store) WriteMutationRecords(records []MutationRecord) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.connector.Connect(context.Background())
	if err != nil {
		return fmt.Errorf("open appender connection: %w", err)
	}
	defer conn.Close()

	appender, err := duckdb.NewAppenderFromConn(conn, "", "mutation_records")
	if err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		if err := appender.AppendRow(
			r.Sample, int8(r.Haplotype), r.TranscriptID, r.Kind,
			int64(r.RefPos), int64(r.MutPos), r.Opcode, int64(r.EditedLength),
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	return nil
}

// MutationsForSample returns every record for one sample, ordered by
// haplotype then transcript then reference position. It reads the result
// back as Arrow record batches
// via go-duckdb's Arrow materialization rather than row-by-row
// database/sql Scan, since a sample's mutation set is read back as a
// whole table rather than iterated row by row downstream.
func (s *Store) MutationsForSample(sample string) ([]MutationRecord, error) {
	ctx := context.Background()
	conn, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("open arrow connection: %w", err)
	}
	defer conn.Close()

	arrowReader, err := duckdb.NewArrowFromConn(conn)
	if err != nil {
		return nil, fmt.Errorf("create arrow reader: %w", err)
	}

	reader, err := arrowReader.QueryContext(ctx, `
		SELECT sample, haplotype, transcript_id, kind, ref_pos, mut_pos, opcode, edited_length
		FROM mutation_records WHERE sample = ?
		ORDER BY haplotype, transcript_id, ref_pos`, sample)
	if err != nil {
		return nil, fmt.Errorf("query mutations for sample: %w", err)
	}
	defer reader.Release()

	var out []MutationRecord
	for reader.Next() {
		out = append(out, recordToMutations(reader.Record())...)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read arrow batch: %w", err)
	}
	return out, nil
}

// recordToMutations converts one Arrow record batch of mutation_records
// columns, in schema column order, into MutationRecord values.
func recordToMutations(rec arrow.Record) []MutationRecord {
	n := int(rec.NumRows())
	out := make([]MutationRecord, n)

	sampleCol := rec.Column(0).(*array.String)
	hapCol := rec.Column(1).(*array.Int8)
	transcriptCol := rec.Column(2).(*array.String)
	kindCol := rec.Column(3).(*array.String)
	refPosCol := rec.Column(4).(*array.Int64)
	mutPosCol := rec.Column(5).(*array.Int64)
	opcodeCol := rec.Column(6).(*array.String)
	lengthCol := rec.Column(7).(*array.Int64)

	for i := 0; i < n; i++ {
		out[i] = MutationRecord{
			Sample:       sampleCol.Value(i),
			Haplotype:    int(hapCol.Value(i)),
			TranscriptID: transcriptCol.Value(i),
			Kind:         kindCol.Value(i),
			RefPos:       int(refPosCol.Value(i)),
			MutPos:       int(mutPosCol.Value(i)),
			Opcode:       opcodeCol.Value(i),
			EditedLength: int(lengthCol.Value(i)),
		}
	}
	return out
}

// CountByKind returns the number of records per mutation kind across the
// whole run, the source data for type_of_mutations_per_patient.tsv.
func (s *Store) CountByKind() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM mutation_records GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		out[kind] = count
	}
	return out, rows.Err()
}

// Clear removes every row, keeping the schema for reuse across runs.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM mutation_records`)
	return err
}
