package directory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

func resolve(t *testing.T, d *HashDirectory, path string) types.AppIdentity {
	t.Helper()
	id, err := d.ResolveIdentity(context.Background(), types.AppDetail{AbsolutePath: path})
	require.NoError(t, err)
	return id
}

func TestSameBinaryAcrossMachines(t *testing.T) {
	d, err := New("alice", utils.SHA256)
	require.NoError(t, err)

	a := resolve(t, d, "/usr/bin/editor")
	b := resolve(t, d, "/opt/tools/editor")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a.String(), IDPrefix))
	assert.Len(t, a.String(), len(IDPrefix)+16)
	assert.NoError(t, utils.ValidateID(a.String(), "id", true))

	assert.NotEqual(t, a, resolve(t, d, "/usr/bin/viewer"))
}

func TestAccountsAreSeparate(t *testing.T) {
	alice, err := New("alice", utils.SHA256)
	require.NoError(t, err)
	bob, err := New("bob", utils.SHA256)
	require.NoError(t, err)

	assert.NotEqual(t, resolve(t, alice, "/bin/foo"), resolve(t, bob, "/bin/foo"))
}

func TestAlgorithmsDiffer(t *testing.T) {
	sha, err := New("alice", utils.SHA256)
	require.NoError(t, err)
	blake, err := New("alice", utils.BLAKE2b)
	require.NoError(t, err)

	assert.NotEqual(t, resolve(t, sha, "/bin/foo"), resolve(t, blake, "/bin/foo"))
}

func TestResolveRejectsBadInput(t *testing.T) {
	d, err := New("alice", utils.SHA256)
	require.NoError(t, err)

	_, err = d.ResolveIdentity(context.Background(), types.AppDetail{AbsolutePath: "bin/foo"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.ResolveIdentity(ctx, types.AppDetail{AbsolutePath: "/bin/foo"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = New("", utils.SHA256)
	assert.Error(t, err)
}

func TestAlias(t *testing.T) {
	d, err := New("alice", utils.SHA256)
	require.NoError(t, err)

	editor := resolve(t, d, "/usr/bin/editor")
	require.NoError(t, d.Alias("Editor", editor))
	assert.Equal(t, editor, resolve(t, d, `/Applications/Editor.app`))

	assert.Error(t, d.Alias("x", "bad id!"))
}
