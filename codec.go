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
	"github.com/ledgerbook/ledgerbook/database"
)

// Save encodes every account of d, with its full history, as the JSON data file format.
func Save(d *Directory) ([]byte, error) {
	return database.EncodeSnapshot(d.Snapshot())
}

// Load rebuilds a Directory from the JSON data file format. Malformed or inconsistent
// input is a CORRUPT_DATA error.
func Load(data []byte) (*Directory, error) {
	snap, err := database.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return Restore(snap)
}
