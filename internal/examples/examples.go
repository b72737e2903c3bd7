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

// Package examples holds a small real-world schema and a message encoded
// with it, for use in examples and benchmarks.
package examples

import (
	"encoding/base64"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// weatherSchema is a FileDescriptorSet for example.weather.v1.
const weatherSchema = `CpQECi9pbnRlcm5hbC9wcm90by9leGFtcGxlL3dlYXRoZXIvdjEvd2VhdGhlci5wcm90bxISZXhhbXBsZS53ZWF0aGVyLnYxIuMBCg1TdGF0aW9uUmVwb3J0EhgKB3N0YXRpb24YASABKAlSB3N0YXRpb24SHAoJZnJlcXVlbmN5GAIgASgCUglmcmVxdWVuY3kSIAoLdGVtcGVyYXR1cmUYAyABKAJSC3RlbXBlcmF0dXJlEhoKCHByZXNzdXJlGAQgASgCUghwcmVzc3VyZRIdCgp3aW5kX3NwZWVkGAUgASgCUgl3aW5kU3BlZWQSPQoKY29uZGl0aW9ucxgGIAEoDjIdLmV4YW1wbGUud2VhdGhlci52MS5Db25kaXRpb25SCmNvbmRpdGlvbnMidQoNV2VhdGhlclJlcG9ydBIWCgZyZWdpb24YASABKAlSBnJlZ2lvbhJMChB3ZWF0aGVyX3N0YXRpb25zGAIgAygLMiEuZXhhbXBsZS53ZWF0aGVyLnYxLlN0YXRpb25SZXBvcnRSD3dlYXRoZXJTdGF0aW9ucypoCglDb25kaXRpb24SGQoVQ09ORElUSU9OX1VOU1BFQ0lGSUVEEAASEwoPQ09ORElUSU9OX1NVTk5ZEAESEwoPQ09ORElUSU9OX1JBSU5ZEAISFgoSQ09ORElUSU9OX09WRVJDQVNUEANiBnByb3RvMw==`

// weatherData is an example.weather.v1.WeatherReport.
const weatherData = `CgdTZWF0dGxlEh0KBUtBRDkzFWaGIkMdzcw0QSXXo/BBLTMzE0AwAxIdCgVLSEI2MBXNjCJDHTMzW0ElUrjgQS0zM/M/MAM=`

var weatherReport = sync.OnceValue(func() protoreflect.MessageDescriptor {
	fds := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(decode(weatherSchema), fds); err != nil {
		panic(err)
	}
	files, err := protodesc.NewFiles(fds)
	if err != nil {
		panic(err)
	}
	d, err := files.FindDescriptorByName("example.weather.v1.WeatherReport")
	if err != nil {
		panic(err)
	}
	return d.(protoreflect.MessageDescriptor) //nolint:errcheck
})

// WeatherReport returns the descriptor for example.weather.v1.WeatherReport.
func WeatherReport() protoreflect.MessageDescriptor {
	return weatherReport()
}

// ReadWeatherData returns an encoded WeatherReport with two stations.
func ReadWeatherData() []byte {
	return decode(weatherData)
}

func decode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
