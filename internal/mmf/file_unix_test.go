//go:build !windows

package mmf

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOrCreate_FirstOpenerOwnsRegion(t *testing.T) {
	dir := t.TempDir()
	name := uuid.NewString()

	f, err := OpenOrCreate(dir, name, 64, AttachExisting, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.True(t, f.IsOwner())
	assert.Len(t, f.MappedFile(), 64)
}

func TestOpenOrCreate_SecondOpenerAttachesNonDestructively(t *testing.T) {
	dir := t.TempDir()
	name := uuid.NewString()

	first, err := OpenOrCreate(dir, name, 64, AttachExisting, nil)
	require.NoError(t, err)
	defer first.Close()

	first.MappedFile()[0] = 0xAB

	second, err := OpenOrCreate(dir, name, 64, AttachExisting, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.False(t, second.IsOwner())
	assert.Equal(t, byte(0xAB), second.MappedFile()[0], "attach must see the same mapped region")
}

func TestOpenOrCreate_SizeMismatchOnAttach(t *testing.T) {
	dir := t.TempDir()
	name := uuid.NewString()

	first, err := OpenOrCreate(dir, name, 64, AttachExisting, nil)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenOrCreate(dir, name, 128, AttachExisting, nil)
	require.Error(t, err)
	var mismatch *ErrSizeMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(64), mismatch.Got)
	assert.Equal(t, int64(128), mismatch.Want)
}

func TestOpenOrCreate_CreateOrOverrideTakesOwnership(t *testing.T) {
	dir := t.TempDir()
	name := uuid.NewString()

	first, err := OpenOrCreate(dir, name, 64, AttachExisting, nil)
	require.NoError(t, err)
	defer first.Close()

	second, err := OpenOrCreate(dir, name, 64, CreateOrOverride, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.IsOwner())
}

func TestClose_IsIdempotentAndRemovesOwnedFile(t *testing.T) {
	dir := t.TempDir()
	name := uuid.NewString()

	f, err := OpenOrCreate(dir, name, 64, AttachExisting, nil)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "Close must be idempotent")

	_, err = os.Stat(BackingFilePath(dir, name))
	assert.True(t, os.IsNotExist(err), "owner's Close must remove the backing file")
}
