package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/tidwall/gjson"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeCommand(cmd common.Command) ([]byte, error) {
	return json.Marshal(cmd)
}

func (j jsonSerializerImpl) SerializeBatch(cmds []common.Command) ([]byte, error) {
	if cmds == nil {
		cmds = []common.Command{}
	}
	return json.Marshal(cmds)
}

func (j jsonSerializerImpl) DeserializeResponse(b []byte, resp *common.Response) error {
	parsed, err := common.ParseResponse(b)
	if err != nil {
		return err
	}
	*resp = parsed
	return nil
}

func (j jsonSerializerImpl) DeserializeResponses(b []byte, resps *[]common.Response) error {
	if !gjson.ValidBytes(b) {
		return fmt.Errorf("pipeline response is not valid json")
	}
	res := gjson.ParseBytes(b)
	if !res.IsArray() {
		return fmt.Errorf("pipeline response must be an array, got %s", res.Type)
	}
	parsed, err := parseEnvelopes(res)
	if err != nil {
		return err
	}
	*resps = parsed
	return nil
}

func (j jsonSerializerImpl) DeserializeTransaction(b []byte, resp *common.TransactionResponse) error {
	if !gjson.ValidBytes(b) {
		return fmt.Errorf("transaction response is not valid json")
	}
	res := gjson.ParseBytes(b)
	if !res.IsObject() {
		return fmt.Errorf("transaction response must be an object, got %s", res.Type)
	}

	errField := res.Get("error")
	resultField := res.Get("result")

	switch {
	case errField.Exists() && resultField.Exists():
		return fmt.Errorf("transaction response carries both result and error")
	case errField.Exists():
		if errField.Type != gjson.String {
			return fmt.Errorf("transaction error must be a string, got %s", errField.Type)
		}
		// the transaction was rejected as a whole, there are no inner results
		*resp = common.TransactionResponse{Message: errField.String(), Failed: true}
		return nil
	case resultField.Exists():
		if !resultField.IsArray() {
			return fmt.Errorf("transaction result must be an array, got %s", resultField.Type)
		}
		parsed, err := parseEnvelopes(resultField)
		if err != nil {
			return err
		}
		*resp = common.TransactionResponse{Results: parsed}
		return nil
	default:
		return fmt.Errorf("transaction response carries neither result nor error")
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseEnvelopes parses every element of a json array as an envelope, keeping the order
func parseEnvelopes(arr gjson.Result) ([]common.Response, error) {
	elems := arr.Array()
	resps := make([]common.Response, 0, len(elems))
	for i, elem := range elems {
		r, err := common.ParseEnvelope(elem)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		resps = append(resps, r)
	}
	return resps, nil
}
