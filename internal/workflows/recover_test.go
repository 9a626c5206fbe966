package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lazywarden/lazywarden/internal/archive"
	"github.com/lazywarden/lazywarden/internal/archive/archivetest"
	"github.com/lazywarden/lazywarden/internal/audit"
	"github.com/lazywarden/lazywarden/internal/configs"
	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/secrets"
)

const (
	testTimestamp   = "2024_05_01_10_00_00"
	testEncPassword = "vault-export-pw"
	testZipPassword = "outer-zip-pw"
	testAttPassword = "attachments-pw"
	testPlaintext   = `{"encrypted":false,"folders":[],"items":[{"name":"github"}]}`
)

// Cheap parameters keep the tests fast. The pipeline does not care about cost.
var testParams = secrets.KDFParams{Variant: secrets.Argon2id, Time: 1, MemoryKiB: 64, Parallelism: 1}

var testIDs = configs.SecretIDs{
	EncryptionPassword:  configs.DefaultEncryptionPasswordID,
	ZipPassword:         configs.DefaultZipPasswordID,
	AttachmentsPassword: configs.DefaultAttachmentPasswordID,
}

type mapStore map[string]string

func (m mapStore) Get(_ context.Context, id string) (string, error) {
	v, ok := m[id]
	if !ok {
		return "", kerrors.ErrSecretRetrieval
	}
	return v, nil
}

func testStore() mapStore {
	return mapStore{
		testIDs.EncryptionPassword:  testEncPassword,
		testIDs.ZipPassword:         testZipPassword,
		testIDs.AttachmentsPassword: testAttPassword,
	}
}

type countingExtractor struct {
	calls int
	inner archive.Extractor
}

func (c *countingExtractor) Extract(path, password, dest string, patterns []string) ([]string, error) {
	c.calls++
	return c.inner.Extract(path, password, dest, patterns)
}

type countingDecrypter struct {
	calls int
	inner secrets.BlobDecrypter
}

func (c *countingDecrypter) Decrypt(encoded string, password []byte) ([]byte, error) {
	c.calls++
	return c.inner.Decrypt(encoded, password)
}

type backupFixture struct {
	withJSON        bool
	withAttachments bool
	jsonBlob        string
}

// writeBackup lays out a backup directory the way the exporter produces it.
func writeBackup(t *testing.T, layout Layout, fx backupFixture) {
	t.Helper()

	var files []archivetest.File
	if fx.withJSON {
		blob := fx.jsonBlob
		if blob == "" {
			var err error
			blob, err = secrets.EncryptBlob([]byte(testPlaintext), []byte(testEncPassword), testParams)
			if err != nil {
				t.Fatalf("Failed to encrypt fixture: %v", err)
			}
		}
		files = append(files, archivetest.File{Name: "bw-backup_" + layout.Timestamp + ".json", Data: []byte(blob)})
	}
	if fx.withAttachments {
		attachments := archivetest.Bytes(t, testAttPassword,
			archivetest.File{Name: "item-1/passport.pdf", Data: []byte("%PDF-1.4")},
			archivetest.File{Name: "item-2/keys/recovery.txt", Data: []byte("recovery codes")},
		)
		files = append(files, archivetest.File{Name: "attachments_" + layout.Timestamp + ".zip", Data: attachments})
	}

	archivetest.Write(t, layout.EncryptedZip(), testZipPassword, files...)
}

func newTestRun(t *testing.T) (RecoverOptions, *countingExtractor, *countingDecrypter) {
	t.Helper()

	ext := &countingExtractor{}
	dec := &countingDecrypter{inner: secrets.BlobDecrypter{Params: testParams}}
	opts := RecoverOptions{
		Layout:    Layout{BaseDir: t.TempDir(), Timestamp: testTimestamp},
		SecretIDs: testIDs,
		Store:     testStore(),
		Extractor: ext,
		Decrypter: dec,
	}
	return opts, ext, dec
}

func stagesOf(result *RecoverResult) []Stage {
	var stages []Stage
	for _, s := range result.Stages {
		stages = append(stages, s.Stage)
	}
	return stages
}

func TestRecover_OuterZipMissing(t *testing.T) {
	opts, ext, dec := newTestRun(t)

	result, err := Recover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []Stage{StageResolvePaths, StageCheckOuterZip, StageReported}
	if got := stagesOf(result); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected stages %v, got %v", want, got)
	}
	if ext.calls != 0 || dec.calls != 0 {
		t.Errorf("Expected no extract or decrypt calls, got %d and %d", ext.calls, dec.calls)
	}

	skipped := result.Skipped()
	if len(skipped) != 1 || skipped[0].Stage != StageCheckOuterZip {
		t.Fatalf("Expected CheckOuterZip to be skipped, got %+v", skipped)
	}
	if !errors.Is(skipped[0].Err, kerrors.ErrArchiveNotFound) {
		t.Errorf("Expected ErrArchiveNotFound, got %v", skipped[0].Err)
	}
	if _, err := os.Stat(opts.Layout.OutputDir()); !os.IsNotExist(err) {
		t.Errorf("Output directory should not be created")
	}
}

func TestRecover_JSONMissing(t *testing.T) {
	opts, ext, dec := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withAttachments: true})

	result, err := Recover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if dec.calls != 0 {
		t.Errorf("Expected decrypt to be skipped, got %d calls", dec.calls)
	}
	if ext.calls != 2 {
		t.Errorf("Expected both archives to be extracted, got %d calls", ext.calls)
	}
	if result.Ran(StageDecryptJSON) {
		t.Errorf("DecryptJSON should not run")
	}
	if !result.Ran(StageCheckAttachmentsZip) {
		t.Errorf("CheckAttachmentsZip should still run")
	}
	if _, err := os.Stat(filepath.Join(opts.Layout.AttachmentsDir(), "item-1", "passport.pdf")); err != nil {
		t.Errorf("Expected attachment to be extracted: %v", err)
	}
}

func TestRecover_FullSuccess(t *testing.T) {
	opts, ext, dec := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})

	var seen []Stage
	opts.OnStage = func(r StageResult) { seen = append(seen, r.Stage) }

	result, err := Recover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := []Stage{
		StageResolvePaths, StageCheckOuterZip, StageExtractOuterZip, StageCheckJSON,
		StageDecryptJSON, StageCheckAttachmentsZip, StageExtractAttachmentsZip, StageReported,
	}
	if got := stagesOf(result); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected stages %v, got %v", want, got)
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("Expected OnStage to see %v, got %v", want, seen)
	}
	if len(result.Skipped()) != 0 {
		t.Errorf("Expected no skipped stages, got %+v", result.Skipped())
	}
	if ext.calls != 2 || dec.calls != 1 {
		t.Errorf("Expected 2 extract and 1 decrypt calls, got %d and %d", ext.calls, dec.calls)
	}

	plaintext, err := os.ReadFile(opts.Layout.DecryptedJSON())
	if err != nil {
		t.Fatalf("Failed to read decrypted JSON: %v", err)
	}
	if string(plaintext) != testPlaintext {
		t.Errorf("Expected %q, got %q", testPlaintext, plaintext)
	}

	for rel, content := range map[string]string{
		"item-1/passport.pdf":      "%PDF-1.4",
		"item-2/keys/recovery.txt": "recovery codes",
	} {
		got, err := os.ReadFile(filepath.Join(opts.Layout.AttachmentsDir(), filepath.FromSlash(rel)))
		if err != nil {
			t.Errorf("Expected %s to be extracted: %v", rel, err)
			continue
		}
		if string(got) != content {
			t.Errorf("Expected %s to contain %q, got %q", rel, content, got)
		}
	}
}

func TestRecover_WrongZipPassword(t *testing.T) {
	opts, _, dec := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})

	store := testStore()
	store[testIDs.ZipPassword] = "not-the-password"
	opts.Store = store

	result, err := Recover(context.Background(), opts)
	if !errors.Is(err, kerrors.ErrBadPassword) {
		t.Fatalf("Expected ErrBadPassword, got: %v", err)
	}

	last := result.Stages[len(result.Stages)-1]
	if last.Stage != StageExtractOuterZip || last.Outcome != Abort {
		t.Errorf("Expected abort at ExtractOuterZip, got %s %s", last.Stage, last.Outcome)
	}
	if result.Ran(StageReported) {
		t.Errorf("Reported should not run after an abort")
	}
	if dec.calls != 0 {
		t.Errorf("Expected no decrypt calls, got %d", dec.calls)
	}
}

func TestRecover_WrongAttachmentsPassword(t *testing.T) {
	opts, _, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})

	store := testStore()
	store[testIDs.AttachmentsPassword] = "nope"
	opts.Store = store

	result, err := Recover(context.Background(), opts)
	if !errors.Is(err, kerrors.ErrBadPassword) {
		t.Fatalf("Expected ErrBadPassword, got: %v", err)
	}
	if !result.Ran(StageDecryptJSON) {
		t.Errorf("JSON should be decrypted before the attachments fail")
	}
	if _, err := os.Stat(opts.Layout.DecryptedJSON()); err != nil {
		t.Errorf("Decrypted JSON should remain on disk: %v", err)
	}
}

func TestRecover_MalformedBlobAborts(t *testing.T) {
	opts, ext, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true, jsonBlob: "c2hvcnQ"})

	result, err := Recover(context.Background(), opts)
	if !errors.Is(err, kerrors.ErrMalformedBlob) {
		t.Fatalf("Expected ErrMalformedBlob, got: %v", err)
	}
	if result.Ran(StageCheckAttachmentsZip) {
		t.Errorf("Attachments should not be processed after a malformed blob")
	}
	if ext.calls != 1 {
		t.Errorf("Expected only the outer archive to be extracted, got %d calls", ext.calls)
	}
}

// vanishingOutputDecrypter removes the output directory after decrypting so
// the plaintext write has nowhere to go.
type vanishingOutputDecrypter struct {
	inner secrets.BlobDecrypter
	dir   string
}

func (v vanishingOutputDecrypter) Decrypt(encoded string, password []byte) ([]byte, error) {
	plaintext, err := v.inner.Decrypt(encoded, password)
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(v.dir); err != nil {
		return nil, err
	}
	return plaintext, nil
}

func TestRecover_WriteFailureAborts(t *testing.T) {
	opts, _, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})
	opts.Decrypter = vanishingOutputDecrypter{
		inner: secrets.BlobDecrypter{Params: testParams},
		dir:   opts.Layout.OutputDir(),
	}

	result, err := Recover(context.Background(), opts)
	if err == nil {
		t.Fatal("Expected an error when the decrypted JSON cannot be written")
	}
	if errors.Is(err, kerrors.ErrArchiveNotFound) {
		t.Errorf("A write failure must not look like a missing input, got: %v", err)
	}

	last := result.Stages[len(result.Stages)-1]
	if last.Stage != StageDecryptJSON || last.Outcome != Abort {
		t.Errorf("Expected abort at DecryptJSON, got %s %s", last.Stage, last.Outcome)
	}
	if result.Ran(StageCheckAttachmentsZip) {
		t.Errorf("Attachments should not be processed after a write failure")
	}
	if result.Ran(StageReported) {
		t.Errorf("Reported should not run after an abort")
	}
	if skipped := result.Skipped(); len(skipped) != 0 {
		t.Errorf("Expected no skipped stages, got %d", len(skipped))
	}
}

func TestDecryptJSON_MissingSourceIsSkippable(t *testing.T) {
	dir := t.TempDir()
	run := &recoverRun{decrypter: secrets.BlobDecrypter{Params: testParams}}

	err := run.decryptJSON(filepath.Join(dir, "gone.json"), filepath.Join(dir, "out.json"))
	if !errors.Is(err, kerrors.ErrArchiveNotFound) {
		t.Fatalf("Expected ErrArchiveNotFound for a missing source, got: %v", err)
	}
	if Classify(err) != Skip {
		t.Errorf("Expected Skip, got %s", Classify(err))
	}
}

func TestDecryptJSON_MissingDestinationAborts(t *testing.T) {
	dir := t.TempDir()
	blob, err := secrets.EncryptBlob([]byte(testPlaintext), []byte(testEncPassword), testParams)
	if err != nil {
		t.Fatalf("Failed to encrypt fixture: %v", err)
	}
	src := filepath.Join(dir, "backup.json")
	if err := os.WriteFile(src, []byte(blob), 0600); err != nil { // #nosec G306
		t.Fatalf("Failed to write fixture: %v", err)
	}
	run := &recoverRun{
		creds:     Credentials{EncryptionPassword: testEncPassword},
		decrypter: secrets.BlobDecrypter{Params: testParams},
	}

	err = run.decryptJSON(src, filepath.Join(dir, "missing", "out.json"))
	if err == nil {
		t.Fatal("Expected an error writing into a missing directory")
	}
	if errors.Is(err, kerrors.ErrArchiveNotFound) {
		t.Errorf("A write failure must not look like a missing input, got: %v", err)
	}
	if Classify(err) != Abort {
		t.Errorf("Expected Abort, got %s", Classify(err))
	}
}

func TestRecover_AttachmentsMissing(t *testing.T) {
	opts, ext, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true})

	result, err := Recover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if ext.calls != 1 {
		t.Errorf("Expected 1 extract call, got %d", ext.calls)
	}
	last := result.Stages[len(result.Stages)-2]
	if last.Stage != StageCheckAttachmentsZip || last.Outcome != Skip {
		t.Errorf("Expected CheckAttachmentsZip to be skipped, got %s %s", last.Stage, last.Outcome)
	}
}

func TestRecover_AttachmentPatterns(t *testing.T) {
	opts, _, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})
	opts.AttachmentPatterns = []string{"item-2/**"}

	if _, err := Recover(context.Background(), opts); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.Layout.AttachmentsDir(), "item-2", "keys", "recovery.txt")); err != nil {
		t.Errorf("Expected matching attachment to be extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(opts.Layout.AttachmentsDir(), "item-1", "passport.pdf")); !os.IsNotExist(err) {
		t.Errorf("Expected non-matching attachment to be left out")
	}
}

func TestRecover_SecretRetrievalIsFatal(t *testing.T) {
	opts, ext, dec := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})

	store := testStore()
	delete(store, testIDs.AttachmentsPassword)
	opts.Store = store

	result, err := Recover(context.Background(), opts)
	if !errors.Is(err, kerrors.ErrSecretRetrieval) {
		t.Fatalf("Expected ErrSecretRetrieval, got: %v", err)
	}
	if result != nil {
		t.Errorf("Expected no stages to run, got %+v", result.Stages)
	}
	if ext.calls != 0 || dec.calls != 0 {
		t.Errorf("Expected no extract or decrypt calls, got %d and %d", ext.calls, dec.calls)
	}
}

func TestRecover_InvalidTimestamp(t *testing.T) {
	opts, _, _ := newTestRun(t)
	opts.Layout.Timestamp = "../etc"

	if _, err := Recover(context.Background(), opts); !errors.Is(err, kerrors.ErrInvalidTimestamp) {
		t.Errorf("Expected ErrInvalidTimestamp, got: %v", err)
	}
}

func TestRecover_Cancelled(t *testing.T) {
	opts, ext, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withJSON: true, withAttachments: true})

	ctx, cancel := context.WithCancel(context.Background())
	opts.OnStage = func(r StageResult) {
		if r.Stage == StageCheckOuterZip {
			cancel()
		}
	}

	if _, err := Recover(ctx, opts); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if ext.calls != 0 {
		t.Errorf("Expected no extract calls after cancellation, got %d", ext.calls)
	}
}

func TestRecover_WritesAuditEntries(t *testing.T) {
	opts, _, _ := newTestRun(t)
	writeBackup(t, opts.Layout, backupFixture{withAttachments: true})
	opts.AuditPath = audit.LogPath(opts.Layout.BaseDir)

	result, err := Recover(context.Background(), opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	entries, err := audit.ReadEntries(opts.AuditPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if len(entries) != len(result.Stages) {
		t.Fatalf("Expected %d entries, got %d", len(result.Stages), len(entries))
	}
	for i, e := range entries {
		if e.Stage != result.Stages[i].Stage.String() {
			t.Errorf("Entry %d: expected stage %s, got %s", i, result.Stages[i].Stage, e.Stage)
		}
		if e.BackupTimestamp != testTimestamp {
			t.Errorf("Entry %d: expected backup timestamp %s, got %s", i, testTimestamp, e.BackupTimestamp)
		}
	}
	if entries[3].Outcome != "skip" {
		t.Errorf("Expected CheckJSON to be logged as skipped, got %s", entries[3].Outcome)
	}
}

func TestRecover_NoStore(t *testing.T) {
	opts, _, _ := newTestRun(t)
	opts.Store = nil

	if _, err := Recover(context.Background(), opts); !errors.Is(err, kerrors.ErrConfig) {
		t.Errorf("Expected ErrConfig, got: %v", err)
	}
}
