/*
Copyright 2024 Ledgerbook Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ledgerbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
)

func TestAdministrator(t *testing.T) {
	d := newTestDirectory()
	admin := NewAdministrator(d)

	alice, err := admin.CreateAccount("Alice", "A1", dec("100"))
	require.NoError(t, err)
	_, err = alice.Deposit(dec("25"))
	require.NoError(t, err)

	history, err := admin.ViewHistory("A1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Amount.Equal(dec("25")))

	blocked, err := admin.BlockAccount("A1")
	require.NoError(t, err)
	assert.Same(t, alice, blocked)
	assert.True(t, alice.IsBlocked())

	// Blocking twice is harmless.
	_, err = admin.BlockAccount("A1")
	assert.NoError(t, err)

	// A blocked account can still be read.
	history, err = admin.ViewHistory("A1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAdministrator_UnknownAccount(t *testing.T) {
	admin := NewAdministrator(newTestDirectory())

	_, err := admin.BlockAccount("nope")
	assert.True(t, ledgererr.Is(err, ledgererr.ErrNotFound))

	_, err = admin.ViewHistory("nope")
	assert.True(t, ledgererr.Is(err, ledgererr.ErrNotFound))
}
