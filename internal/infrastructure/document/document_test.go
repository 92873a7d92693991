package document

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/logging"
	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

func TestPolicyCheck(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	cases := []struct {
		name    string
		file    string
		size    int64
		wantErr bool
	}{
		{name: "pdf accepted", file: "novel.pdf", size: 1024},
		{name: "upper-case docx accepted", file: "NOVEL.DOCX", size: 1024},
		{name: "doc accepted at limit", file: "draft.doc", size: DefaultMaxSize},
		{name: "text rejected", file: "notes.txt", size: 10, wantErr: true},
		{name: "no extension rejected", file: "README", size: 10, wantErr: true},
		{name: "trailing dot rejected", file: "draft.", size: 10, wantErr: true},
		{name: "oversized rejected", file: "huge.pdf", size: DefaultMaxSize + 1, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := policy.Check(tc.file, tc.size)
			if tc.wantErr {
				var validationErr *inkerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPolicyOversizeMessageIsHumanized(t *testing.T) {
	t.Parallel()

	err := DefaultPolicy().Check("huge.pdf", 12_000_000)
	require.ErrorContains(t, err, "12 MB")
	require.ErrorContains(t, err, "10 MB")
}

func TestPolicyDescribe(t *testing.T) {
	t.Parallel()

	require.Equal(t, "PDF, DOCX, DOC up to 10 MB", DefaultPolicy().Describe())
	require.Equal(t, "TXT", Policy{Extensions: []string{"txt"}}.Describe())
}

func TestPolicyUnlimitedSize(t *testing.T) {
	t.Parallel()

	policy := Policy{Extensions: []string{".pdf"}}
	require.NoError(t, policy.Check("tome.pdf", 1<<40))
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0 B", FormatSize(0))
	require.Equal(t, "1.5 kB", FormatSize(1500))
	require.Equal(t, "10 MB", FormatSize(DefaultMaxSize))
}

func TestLoaderLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "chapter-one.docx")
	require.NoError(t, os.WriteFile(path, []byte("Call me Ishmael."), 0o644))

	loader := NewLoader(DefaultPolicy(), logging.Nop())
	doc, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "chapter-one.docx", doc.Name())
	require.Equal(t, int64(16), doc.Size())
	require.Equal(t, ".docx", doc.Extension())
	require.True(t, filepath.IsAbs(doc.Path()))

	rc, err := doc.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "Call me Ishmael.", string(data))
}

func TestLoaderRejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	sub := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(sub, 0o755))

	loader := NewLoader(DefaultPolicy(), nil)
	for _, path := range []string{txt, sub, filepath.Join(dir, "missing.pdf")} {
		_, err := loader.Load(context.Background(), path)
		var validationErr *inkerrors.ValidationError
		require.ErrorAs(t, err, &validationErr, path)
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(DefaultPolicy(), nil).Load(ctx, "anything.pdf")
	require.ErrorIs(t, err, context.Canceled)
}
