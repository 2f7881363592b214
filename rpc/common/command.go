package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Command Descriptor
// --------------------------------------------------------------------------

// Command is the wire form of a single store operation: element 0 is the
// command name, the remaining elements are the positional arguments.
// The name never changes after NewCommand; arguments can only be appended.
//
// A Command shares its backing array when copied. Use Clone before appending
// to two copies of the same command.
type Command struct {
	elems []Value
}

// NewCommand creates a command that only contains the name
func NewCommand(name string) Command {
	return Command{elems: []Value{Str(name)}}
}

// Name returns the command name
func (c Command) Name() string {
	if len(c.elems) == 0 {
		return ""
	}
	name, _ := c.elems[0].Text()
	return name
}

// Len returns the number of elements including the name
func (c Command) Len() int { return len(c.elems) }

// Args returns a copy of the positional arguments
func (c Command) Args() []Value {
	if len(c.elems) < 2 {
		return nil
	}
	args := make([]Value, len(c.elems)-1)
	copy(args, c.elems[1:])
	return args
}

// Values returns a copy of the complete wire sequence
func (c Command) Values() []Value {
	values := make([]Value, len(c.elems))
	copy(values, c.elems)
	return values
}

// Clone returns a copy that does not share memory with c
func (c Command) Clone() Command {
	return Command{elems: c.Values()}
}

// Append encodes arg and appends it
func (c *Command) Append(arg any) error {
	v, err := Encode(arg)
	if err != nil {
		return err
	}
	c.elems = append(c.elems, v)
	return nil
}

// AppendPair appends k and v in that order. Nothing is appended if either fails to encode.
func (c *Command) AppendPair(k, v any) error {
	return c.AppendAll(k, v)
}

// AppendAll appends every argument in order. Nothing is appended if any of them fails to encode.
func (c *Command) AppendAll(args ...any) error {
	values := make([]Value, len(args))
	for i, arg := range args {
		v, err := Encode(arg)
		if err != nil {
			return err
		}
		values[i] = v
	}
	c.elems = append(c.elems, values...)
	return nil
}

// Command returns the command itself, so a raw Command can be queued in a batch
func (c Command) Command() (Command, error) {
	if len(c.elems) == 0 {
		return Command{}, &EncodingError{Value: c, Reason: "command has no name"}
	}
	return c, nil
}

func (c Command) MarshalJSON() ([]byte, error) {
	return Array(c.elems...).MarshalJSON()
}

func (c *Command) UnmarshalJSON(b []byte) error {
	var v Value
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	elems := v.Elems()
	if len(elems) == 0 || elems[0].Kind() != KindString {
		return fmt.Errorf("command must be a non-empty array headed by a string")
	}
	c.elems = elems
	return nil
}
