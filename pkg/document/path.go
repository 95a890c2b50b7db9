/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package document defines the hierarchical paths of the remote document
// store and the merge rule applied to document upserts. It is shared by the
// cli and the server.
package document

import (
	"strings"

	"github.com/pkg/errors"
)

// UsersCollection is the top-level collection holding one root document per user
const UsersCollection = "users"

// ErrInvalidPath is returned for a malformed document or collection path
var ErrInvalidPath = errors.New("invalid path")

// RootPath returns the path of the root document of a user
func RootPath(userID string) string {
	return UsersCollection + "/" + userID
}

// CollectionPath returns the path of a collection under the root document of a user
func CollectionPath(userID, collection string) string {
	return RootPath(userID) + "/" + collection
}

// DocPath returns the path of a document in a collection of a user
func DocPath(userID, collection, id string) string {
	return CollectionPath(userID, collection) + "/" + id
}

// Split returns the segments of a path after validating it. Segments are
// non-empty and the path belongs to the users collection.
func Split(path string) ([]string, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for _, s := range segs {
		if s == "" || s == "." || s == ".." {
			return nil, errors.Wrapf(ErrInvalidPath, "empty or relative segment in '%s'", path)
		}
	}
	if len(segs) < 2 || segs[0] != UsersCollection {
		return nil, errors.Wrapf(ErrInvalidPath, "'%s' is not under %s", path, UsersCollection)
	}

	return segs, nil
}

// IsCollection reports whether the path names a collection. Collections
// have an odd number of segments, documents an even one.
func IsCollection(path string) bool {
	segs, err := Split(path)
	if err != nil {
		return false
	}

	return len(segs)%2 == 1
}

// Owner returns the user id a path belongs to
func Owner(path string) (string, error) {
	segs, err := Split(path)
	if err != nil {
		return "", err
	}

	return segs[1], nil
}

// Parent returns the collection path of a document path, or the empty
// string for a root document
func Parent(path string) string {
	segs, err := Split(path)
	if err != nil || len(segs) <= 2 {
		return ""
	}

	return strings.Join(segs[:len(segs)-1], "/")
}

// ID returns the last segment of a path
func ID(path string) string {
	segs, err := Split(path)
	if err != nil {
		return ""
	}

	return segs[len(segs)-1]
}
