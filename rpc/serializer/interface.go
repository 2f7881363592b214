package serializer

import "github.com/ValentinKolb/restkv/rpc/common"

// IRPCSerializer is the interface for all request/response serializers
type IRPCSerializer interface {
	// SerializeCommand serializes a single command into a request body
	SerializeCommand(cmd common.Command) ([]byte, error)
	// SerializeBatch serializes an ordered list of commands into one request body
	SerializeBatch(cmds []common.Command) ([]byte, error)
	// DeserializeResponse parses the body of a single command response
	DeserializeResponse(b []byte, resp *common.Response) error
	// DeserializeResponses parses the body of a pipeline response (one envelope per command)
	DeserializeResponses(b []byte, resps *[]common.Response) error
	// DeserializeTransaction parses the body of a transaction response (an envelope of envelopes)
	DeserializeTransaction(b []byte, resp *common.TransactionResponse) error
}
