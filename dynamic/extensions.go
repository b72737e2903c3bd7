// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dynamic

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ExtensionResolver looks up extensions by the message they extend.
//
// [protoregistry.Types] implements this interface.
type ExtensionResolver = protoregistry.ExtensionTypeResolver

// ExtensionsFromFiles builds an [ExtensionResolver] out of every extension
// declared in a file registry. Extension types are created with
// [dynamicpb.NewExtensionType].
func ExtensionsFromFiles(files *protoregistry.Files) *protoregistry.Types {
	types := new(protoregistry.Types)
	files.RangeFiles(func(f protoreflect.FileDescriptor) bool {
		registerExtensions(types, f)
		return true
	})
	return types
}

func registerExtensions(types *protoregistry.Types, d interface {
	Extensions() protoreflect.ExtensionDescriptors
	Messages() protoreflect.MessageDescriptors
}) {
	exts := d.Extensions()
	for i := range exts.Len() {
		// A duplicate registration leaves the first one in place, which is
		// the same thing protoregistry.Files does for duplicate files.
		_ = types.RegisterExtension(dynamicpb.NewExtensionType(exts.Get(i)))
	}

	msgs := d.Messages()
	for i := range msgs.Len() {
		registerExtensions(types, msgs.Get(i))
	}
}
