package workflows

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lazywarden/lazywarden/internal/archive"
	"github.com/lazywarden/lazywarden/internal/audit"
	"github.com/lazywarden/lazywarden/internal/configs"
	kerrors "github.com/lazywarden/lazywarden/internal/errors"
	"github.com/lazywarden/lazywarden/internal/secrets"
	"github.com/lazywarden/lazywarden/internal/secretstore"
)

// Extractor unpacks an encrypted archive into dest.
type Extractor interface {
	Extract(path, password, dest string, patterns []string) ([]string, error)
}

// Decrypter turns an encrypted blob into plaintext.
type Decrypter interface {
	Decrypt(encoded string, password []byte) ([]byte, error)
}

// Credentials are the three passwords of a backup. They are only held in memory.
type Credentials struct {
	EncryptionPassword  string
	ZipPassword         string
	AttachmentsPassword string
}

// RecoverOptions configures the recover workflow.
type RecoverOptions struct {
	Layout Layout

	// SecretIDs name the three passwords in Store.
	SecretIDs configs.SecretIDs
	Store     secretstore.Store

	// Extractor defaults to archive.Extractor.
	Extractor Extractor

	// Decrypter defaults to secrets.BlobDecrypter with KDFParams.
	Decrypter Decrypter
	KDFParams secrets.KDFParams

	// AttachmentPatterns limits which attachments are extracted. Empty means all.
	AttachmentPatterns []string

	// AuditPath is the audit log file. Empty disables auditing.
	AuditPath string

	// OnStage is called after every stage, in order.
	OnStage func(StageResult)
}

// RecoverResult contains the outcome of a recovery run.
type RecoverResult struct {
	Layout Layout

	// Stages lists every stage that ran, in order, including skipped ones.
	Stages []StageResult
}

// Skipped returns the stages that were skipped.
func (r *RecoverResult) Skipped() []StageResult {
	var skipped []StageResult
	for _, s := range r.Stages {
		if s.Outcome == Skip {
			skipped = append(skipped, s)
		}
	}
	return skipped
}

// Ran reports whether stage executed during the run.
func (r *RecoverResult) Ran(stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return true
		}
	}
	return false
}

// Recover fetches the backup passwords, extracts the backup archive, decrypts
// the JSON export and extracts the attachments archive.
//
// A missing input file skips the stages that depend on it and the run still
// reaches the Reported stage. Malformed blobs, cipher faults, corrupt archives
// and wrong archive passwords abort the run and are returned.
//
// Returns ErrSecretRetrieval if any password cannot be fetched; no stage runs.
// Returns ErrBadPassword if an archive password is wrong.
// Returns ErrArchiveCorrupt if an archive cannot be read.
// Returns ErrMalformedBlob or ErrDecryptFailed if the JSON cannot be decrypted.
func Recover(ctx context.Context, opts RecoverOptions) (*RecoverResult, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: no secret store configured", kerrors.ErrConfig)
	}
	if err := configs.ValidateTimestamp(opts.Layout.Timestamp); err != nil {
		return nil, err
	}

	creds, err := fetchCredentials(ctx, opts.Store, opts.SecretIDs)
	if err != nil {
		return nil, err
	}

	r := &recoverRun{
		opts:      opts,
		creds:     creds,
		extractor: opts.Extractor,
		decrypter: opts.Decrypter,
	}
	if r.extractor == nil {
		r.extractor = archive.Extractor{}
	}
	if r.decrypter == nil {
		params := opts.KDFParams
		if params == (secrets.KDFParams{}) {
			params = secrets.DefaultKDFParams()
		}
		r.decrypter = secrets.BlobDecrypter{Params: params}
	}

	result := &RecoverResult{Layout: opts.Layout}

	stage := StageResolvePaths
	for {
		var res StageResult
		if err := ctx.Err(); err != nil {
			res = StageResult{Stage: stage, Outcome: Abort, Err: err}
		} else {
			res = r.exec(stage)
		}

		result.Stages = append(result.Stages, res)
		r.record(res)
		if opts.OnStage != nil {
			opts.OnStage(res)
		}

		if res.Outcome == Abort {
			return result, fmt.Errorf("%s: %w", res.Stage, res.Err)
		}
		if stage == StageReported {
			return result, nil
		}
		stage = next(stage, res.Outcome)
	}
}

func fetchCredentials(ctx context.Context, store secretstore.Store, ids configs.SecretIDs) (Credentials, error) {
	values, err := secretstore.Fetch(ctx, store, ids.EncryptionPassword, ids.ZipPassword, ids.AttachmentsPassword)
	if err != nil {
		if !errors.Is(err, kerrors.ErrSecretRetrieval) {
			err = fmt.Errorf("%w: %v", kerrors.ErrSecretRetrieval, err)
		}
		return Credentials{}, err
	}

	return Credentials{
		EncryptionPassword:  values[0].Value,
		ZipPassword:         values[1].Value,
		AttachmentsPassword: values[2].Value,
	}, nil
}

type recoverRun struct {
	opts      RecoverOptions
	creds     Credentials
	extractor Extractor
	decrypter Decrypter
}

func (r *recoverRun) exec(stage Stage) StageResult {
	l := r.opts.Layout

	switch stage {
	case StageResolvePaths:
		return StageResult{Stage: stage, Outcome: Continue, Path: l.BaseDir}

	case StageCheckOuterZip:
		return checkExists(stage, l.EncryptedZip())

	case StageExtractOuterZip:
		files, err := r.extract(l.EncryptedZip(), r.creds.ZipPassword, l.OutputDir(), nil)
		return StageResult{Stage: stage, Outcome: Classify(err), Path: l.OutputDir(), Err: err, Files: files}

	case StageCheckJSON:
		return checkExists(stage, l.EncryptedJSON())

	case StageDecryptJSON:
		err := r.decryptJSON(l.EncryptedJSON(), l.DecryptedJSON())
		res := StageResult{Stage: stage, Outcome: Classify(err), Path: l.DecryptedJSON(), Err: err}
		if err == nil {
			res.Files = []string{l.DecryptedJSON()}
		}
		return res

	case StageCheckAttachmentsZip:
		return checkExists(stage, l.AttachmentsZip())

	case StageExtractAttachmentsZip:
		files, err := r.extract(l.AttachmentsZip(), r.creds.AttachmentsPassword, l.AttachmentsDir(), r.opts.AttachmentPatterns)
		return StageResult{Stage: stage, Outcome: Classify(err), Path: l.AttachmentsDir(), Err: err, Files: files}

	case StageReported:
		return StageResult{Stage: stage, Outcome: Continue}

	default:
		return StageResult{Stage: stage, Outcome: Abort, Err: fmt.Errorf("unknown stage %d", int(stage))}
	}
}

// checkExists skips the stage when path is missing. Any other stat failure aborts.
func checkExists(stage Stage, path string) StageResult {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return StageResult{Stage: stage, Outcome: Continue, Path: path}
	case errors.Is(err, fs.ErrNotExist):
		return StageResult{Stage: stage, Outcome: Skip, Path: path, Err: fmt.Errorf("the file %s does not exist: %w", path, kerrors.ErrArchiveNotFound)}
	default:
		return StageResult{Stage: stage, Outcome: Abort, Path: path, Err: err}
	}
}

func (r *recoverRun) extract(src, password, dest string, patterns []string) ([]string, error) {
	if err := os.MkdirAll(dest, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %v", dest, err)
	}
	return r.extractor.Extract(src, password, dest, patterns)
}

func (r *recoverRun) decryptJSON(src, dst string) error {
	encrypted, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("the file %s does not exist: %w", src, kerrors.ErrArchiveNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", src, err)
	}

	plaintext, err := r.decrypter.Decrypt(string(encrypted), []byte(r.creds.EncryptionPassword))
	if err != nil {
		return err
	}
	defer secrets.ClearBytes(plaintext)

	if err := os.WriteFile(dst, plaintext, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %v", dst, err)
	}
	return nil
}

func (r *recoverRun) record(res StageResult) {
	entry := audit.Entry{
		Operation:       "recover",
		BackupTimestamp: r.opts.Layout.Timestamp,
		Stage:           res.Stage.String(),
		Outcome:         res.Outcome.String(),
		Path:            res.Path,
		Files:           res.Files,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	audit.Log(r.opts.AuditPath, entry)
}
