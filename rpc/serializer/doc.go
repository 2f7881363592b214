// Package serializer turns commands into request bodies and response bodies into
// envelopes for the REST protocol of the store.
//
// Key Components:
//
//   - IRPCSerializer: Core interface with one method per body shape: a single
//     command, a batch of commands, a single envelope, a pipeline response
//     (array of envelopes) and a transaction response (envelope of envelopes).
//
//   - jsonSerializerImpl: The JSON implementation. Requests are written with
//     encoding/json, responses are parsed with gjson so that the envelope shape
//     ("exactly one of result or error") can be checked before any value is decoded.
//
// Thread Safety:
//
//	Serializers are stateless and safe for concurrent use.
//
// Usage:
//
//	s := serializer.NewJSONSerializer()
//	body, err := s.SerializeBatch([]common.Command{cmdA, cmdB})
//	// ... send body ...
//	var resps []common.Response
//	err = s.DeserializeResponses(respBody, &resps)
package serializer
