package storage

import (
	"path/filepath"
	"testing"
	"time"

	"neardup/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testFiles() []*models.FileInfo {
	mod := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*models.FileInfo{
		{
			Path:        "/docs/readme.txt",
			Kind:        models.KindText,
			SHA256:      "aaa",
			Fingerprint: 0xDEADBEEF,
			FileSize:    1024,
			ModTime:     mod,
			Score:       120.5,
			Lines:       10,
			Words:       120,
		},
		{
			Path:        "/photos/cat.jpg",
			Kind:        models.KindImage,
			SHA256:      "bbb",
			Fingerprint: 0x8000000000000001,
			FileSize:    204800,
			ModTime:     mod.Add(time.Hour),
			Score:       2073600,
			Width:       1920,
			Height:      1080,
			Format:      "jpeg",
			HasExif:     true,
		},
	}
}

func TestNewStorage_CreatesSchema(t *testing.T) {
	store := newTestStorage(t)

	for _, table := range []string{"files", "scan_history", "vocab", "schema_version"} {
		if !store.tableExists(table) {
			t.Errorf("table %q missing after init", table)
		}
	}
	if v := store.getSchemaVersion(); v != schemaVersion {
		t.Errorf("schema version = %d, want %d", v, schemaVersion)
	}
}

func TestSaveFiles_AndGetAllFiles(t *testing.T) {
	store := newTestStorage(t)

	files := testFiles()
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	got, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d files, want 2", len(got))
	}

	// Ordered by path: /docs before /photos
	text, image := got[0], got[1]

	if text.Path != "/docs/readme.txt" || text.Kind != models.KindText {
		t.Errorf("text file = %+v", text)
	}
	if text.Fingerprint != 0xDEADBEEF || text.Words != 120 || text.Lines != 10 {
		t.Errorf("text fields lost: %+v", text)
	}
	if !text.ModTime.Equal(files[0].ModTime) {
		t.Errorf("mod time = %v, want %v", text.ModTime, files[0].ModTime)
	}

	if image.Kind != models.KindImage || !image.HasExif {
		t.Errorf("image file = %+v", image)
	}
	// High-bit fingerprints survive the int64 round trip
	if image.Fingerprint != 0x8000000000000001 {
		t.Errorf("image fingerprint = %x, want 8000000000000001", image.Fingerprint)
	}
	if image.Width != 1920 || image.Height != 1080 || image.Format != "jpeg" {
		t.Errorf("image fields lost: %+v", image)
	}
}

func TestSaveFiles_Upsert(t *testing.T) {
	store := newTestStorage(t)

	files := testFiles()[:1]
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("first SaveFiles failed: %v", err)
	}

	files[0].Score = 999
	files[0].Words = 500
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("second SaveFiles failed: %v", err)
	}

	got, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d files after upsert, want 1", len(got))
	}
	if got[0].Score != 999 || got[0].Words != 500 {
		t.Errorf("upsert did not replace: %+v", got[0])
	}
}

func TestUpdateGroups_AndGetDuplicateGroups(t *testing.T) {
	store := newTestStorage(t)

	mod := time.Now()
	files := []*models.FileInfo{
		{Path: "/a.txt", Kind: models.KindText, SHA256: "x", Fingerprint: 1, FileSize: 10, ModTime: mod, Score: 30},
		{Path: "/b.txt", Kind: models.KindText, SHA256: "x", Fingerprint: 1, FileSize: 10, ModTime: mod, Score: 20},
		{Path: "/c.txt", Kind: models.KindText, SHA256: "y", Fingerprint: 2, FileSize: 10, ModTime: mod, Score: 10},
	}
	if err := store.SaveFiles(files); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}

	groups := []*models.DuplicateGroup{
		{
			ID:     1,
			Files:  []*models.FileInfo{files[0], files[1]},
			Keep:   files[0],
			Remove: []*models.FileInfo{files[1]},
		},
	}
	if err := store.UpdateGroups(groups); err != nil {
		t.Fatalf("UpdateGroups failed: %v", err)
	}

	got, err := store.GetDuplicateGroups()
	if err != nil {
		t.Fatalf("GetDuplicateGroups failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1", len(got))
	}
	g := got[0]
	if g.ID != 1 || len(g.Files) != 2 {
		t.Errorf("group = %+v", g)
	}
	// Files come back sorted by score, best first
	if g.Keep.Path != "/a.txt" {
		t.Errorf("keep = %s, want /a.txt", g.Keep.Path)
	}
	if len(g.Remove) != 1 || g.Remove[0].Path != "/b.txt" {
		t.Errorf("remove = %+v", g.Remove)
	}

	count, err := store.GetGroupCount()
	if err != nil {
		t.Fatalf("GetGroupCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("group count = %d, want 1", count)
	}
}

func TestUpdateGroups_ResetsOldGroups(t *testing.T) {
	store := newTestStorage(t)

	mod := time.Now()
	files := []*models.FileInfo{
		{Path: "/a.txt", Kind: models.KindText, Fingerprint: 1, FileSize: 1, ModTime: mod, Score: 2},
		{Path: "/b.txt", Kind: models.KindText, Fingerprint: 1, FileSize: 1, ModTime: mod, Score: 1},
	}
	store.SaveFiles(files)
	store.UpdateGroups([]*models.DuplicateGroup{{
		ID: 1, Files: files, Keep: files[0], Remove: files[1:],
	}})

	// Regrouping with nothing clears all assignments
	if err := store.UpdateGroups(nil); err != nil {
		t.Fatalf("UpdateGroups(nil) failed: %v", err)
	}
	groups, err := store.GetDuplicateGroups()
	if err != nil {
		t.Fatalf("GetDuplicateGroups failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("got %d groups after reset, want 0", len(groups))
	}
}

func TestDeleteFile(t *testing.T) {
	store := newTestStorage(t)

	if err := store.SaveFiles(testFiles()); err != nil {
		t.Fatalf("SaveFiles failed: %v", err)
	}
	if err := store.DeleteFile("/docs/readme.txt"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}

	got, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/photos/cat.jpg" {
		t.Errorf("remaining files = %+v", got)
	}
}

func TestRecordScan(t *testing.T) {
	store := newTestStorage(t)

	if err := store.RecordScan("/docs", 42, 3, 7); err != nil {
		t.Fatalf("RecordScan failed: %v", err)
	}

	var folder string
	var total int
	err := store.db.QueryRow(
		`SELECT folder, total_files FROM scan_history`).Scan(&folder, &total)
	if err != nil {
		t.Fatalf("history query failed: %v", err)
	}
	if folder != "/docs" || total != 42 {
		t.Errorf("history = (%s, %d), want (/docs, 42)", folder, total)
	}
}

func TestVocabulary_SaveAndMerge(t *testing.T) {
	store := newTestStorage(t)

	if err := store.SaveVocabulary(map[string]int{"some": 2, "soft": 1}); err != nil {
		t.Fatalf("SaveVocabulary failed: %v", err)
	}
	// Second save merges counts rather than replacing
	if err := store.SaveVocabulary(map[string]int{"some": 3, "soda": 1}); err != nil {
		t.Fatalf("second SaveVocabulary failed: %v", err)
	}

	vocab, err := store.GetVocabulary()
	if err != nil {
		t.Fatalf("GetVocabulary failed: %v", err)
	}
	counts := make(map[string]int)
	for _, wc := range vocab {
		counts[wc.Word] = wc.Count
	}
	want := map[string]int{"some": 5, "soft": 1, "soda": 1}
	for w, c := range want {
		if counts[w] != c {
			t.Errorf("count[%q] = %d, want %d", w, counts[w], c)
		}
	}

	// Most frequent first
	if vocab[0].Word != "some" {
		t.Errorf("first word = %q, want %q", vocab[0].Word, "some")
	}
}

func TestAddWord(t *testing.T) {
	store := newTestStorage(t)

	if err := store.AddWord("word", 1); err != nil {
		t.Fatalf("AddWord failed: %v", err)
	}
	if err := store.AddWord("word", 4); err != nil {
		t.Fatalf("second AddWord failed: %v", err)
	}

	vocab, _ := store.GetVocabulary()
	if len(vocab) != 1 || vocab[0].Count != 5 {
		t.Errorf("vocab = %+v, want word with count 5", vocab)
	}
}

func TestDeleteWords(t *testing.T) {
	store := newTestStorage(t)

	store.SaveVocabulary(map[string]int{"some": 1, "soft": 1, "soda": 1})
	if err := store.DeleteWords([]string{"some", "soda"}); err != nil {
		t.Fatalf("DeleteWords failed: %v", err)
	}

	vocab, _ := store.GetVocabulary()
	if len(vocab) != 1 || vocab[0].Word != "soft" {
		t.Errorf("vocab = %+v, want only soft", vocab)
	}
}

func TestStorage_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	store.SaveFiles(testFiles())
	store.Close()

	// Reopening runs migrations idempotently and keeps the data
	store, err = NewStorage(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d files after reopen, want 2", len(got))
	}
	if v := store.getSchemaVersion(); v != schemaVersion {
		t.Errorf("schema version after reopen = %d, want %d", v, schemaVersion)
	}
}
