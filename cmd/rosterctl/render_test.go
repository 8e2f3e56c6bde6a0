package main

import (
	"bytes"
	"strings"
	"testing"

	"hospital-roster/internal/client"
	"hospital-roster/internal/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHospitals(t *testing.T) {
	var buf bytes.Buffer
	err := writeHospitals(&buf, []roster.Hospital{
		{ID: "h1", Name: "Mercy", Type: roster.TypeTeaching, Status: roster.StatusActive, State: "ny", Beds: 250, Rating: 4.5,
			PrimaryAdmin: &roster.Admin{FirstName: "Ann", LastName: "Park"}},
		{ID: "h2", Name: "Bare", Type: roster.TypeGeneral, Status: roster.StatusPending},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Ann Park")
	assert.Contains(t, lines[1], "NY")
	assert.Contains(t, lines[2], "-")
}

func TestWriteSave(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSave(&buf, &client.SaveResult{}))
	assert.Equal(t, "Nothing to save\n", buf.String())

	buf.Reset()
	require.NoError(t, writeSave(&buf, &client.SaveResult{
		AddedAdmins: []client.AddedAdmin{
			{Email: "a@b.com", ID: "n1"},
			{Email: "c@d.com", Error: "Email is already used by another admin"},
		},
		AddedAdminsCount: client.AddedAdminsCount{Total: 2, Successful: 1, Failed: 1},
		RemovedAdmins:    1,
	}))
	out := buf.String()
	assert.Contains(t, out, "Added 1 of 2 admins")
	assert.Contains(t, out, "Removed 1 admins")
	assert.Contains(t, out, "c@d.com")
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"list", "stats", "admins", "add-admin", "remove-admin", "status", "delete"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetOut(&stderr)
	root.SetArgs([]string{"status", "h1", "closed"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}
