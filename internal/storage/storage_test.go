package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liquidityBook/internal/model"
)

func sampleRecord() model.SnapshotRecord {
	return model.SnapshotRecord{
		Pool:     "WAVAX/USDC",
		TokenX:   model.TokenMeta{Address: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7", Decimals: 18, Symbol: "WAVAX"},
		TokenY:   model.TokenMeta{Address: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", Decimals: 6, Symbol: "USDC"},
		ActiveID: 8388608,
		BinStep:  25,
		Bins: []model.Bin{
			{ID: 8388607, Price: 0.997506234, ReserveY: 1200},
			{ID: 8388608, Price: 1, ReserveX: 10, ReserveY: 900, LiquidityUSD: 910},
			{ID: 8388609, Price: 1.0025, ReserveX: 25},
		},
	}
}

func TestSnapshotFileFormats(t *testing.T) {
	dir := t.TempDir()
	want := sampleRecord()

	for _, name := range []string{"snap.json", "nested/snap.yaml", "snap.YML"} {
		path := filepath.Join(dir, name)
		if err := WriteSnapshotFile(path, want); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("%s: temp file left behind", name)
		}

		got, err := ReadSnapshotFile(path)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if got.Pool != want.Pool || got.ActiveID != want.ActiveID || got.BinStep != want.BinStep {
			t.Fatalf("%s: header mismatch: %+v", name, got)
		}
		if len(got.Bins) != len(want.Bins) || got.Bins[1] != want.Bins[1] {
			t.Fatalf("%s: bins mismatch: %+v", name, got.Bins)
		}
		if got.TokenY.Decimals != 6 {
			t.Fatalf("%s: token meta lost: %+v", name, got.TokenY)
		}
		if _, err := model.NewSnapshot(got); err != nil {
			t.Fatalf("%s: invalid snapshot after read: %v", name, err)
		}
	}
}

func TestReadSnapshotFileHandWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	body := `pool: TEST
active_id: 100
bin_step: 10
bins:
  - {id: 99, price: 0.999}
  - {id: 100, price: 1, reserve_x: 3, reserve_y: 4}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.Bins[1].ReserveY != 4 || rec.BinStep != 10 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestSnapshotFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSnapshotFile(filepath.Join(dir, "snap.csv"), sampleRecord()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := ReadSnapshotFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshotFile(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}

func distributionRecords(n int) []model.DistributionRecord {
	out := make([]model.DistributionRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.DistributionRecord{
			Pool:     "TEST",
			Strategy: "curve",
			ActiveID: 100,
			BinID:    int64(98 + i),
			Weight:   float64(i+1) / float64(n),
			AmountX:  float64(i),
		})
	}
	return out
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plan.jsonl")
	var sink DistributionSink = NewJsonlStorage(path)

	if err := sink.PutDistribution(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not create the file")
	}

	if err := sink.PutDistribution(distributionRecords(3)); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutDistribution(distributionRecords(2)); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	got, err := ReadDistribution(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 records, got %d", len(got))
	}
	if got[2].BinID != 100 || got[4].BinID != 99 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestJsonlWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJsonlWriter(&buf).PutDistribution(distributionRecords(2)); err != nil {
		t.Fatalf("put: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"strategy":"curve"`) || !strings.Contains(lines[1], `"bin_id":99`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
