/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/command/handlers.go
*/

package command

import (
	"strconv"
	"time"

	"github.com/akashmaji946/respkv/internal/common"
	"github.com/akashmaji946/respkv/internal/resp"
	"github.com/akashmaji946/respkv/internal/store"
)

var pong = []byte("PONG")
var ok = []byte("OK")

func handlePing(ctx *Context, _ ParsedArgs) error {
	return resp.WriteSimpleString(ctx.W, pong)
}

func handleEcho(ctx *Context, args ParsedArgs) error {
	return resp.WriteBulkString(ctx.W, args.Args[0])
}

func handleGet(ctx *Context, args ParsedArgs) error {
	key := args.Args[0]

	guard := ctx.DB.Read(0)
	v, found := guard.Dataset().Get(key)
	guard.Release()

	if !found {
		return resp.WriteNullBulkString(ctx.W)
	}
	sv, ok := v.(store.StringValue)
	if !ok {
		return resp.WriteNullBulkString(ctx.W)
	}
	return resp.WriteBulkString(ctx.W, sv.Data)
}

// handleSet unconditionally sets data[key]=value; a PX argument sets a
// millisecond expiry, its absence clears any prior expiry.
func handleSet(ctx *Context, args ParsedArgs) error {
	key, value := args.Args[0], args.Args[1]

	guard := ctx.DB.Write(0)
	ds := guard.Dataset()
	ds.Set(key, store.NewStringValue(value))
	if px, hasPX := args.NamedArgs["px"]; hasPX {
		ms, err := strconv.ParseUint(string(px[0]), 10, 64)
		if err != nil {
			guard.Release()
			return protocolErrorf("invalid PX value %q", px[0])
		}
		ds.SetExpiry(key, time.Now().Add(time.Duration(ms)*time.Millisecond))
	} else {
		ds.UnsetExpiry(key)
	}
	guard.Release()

	return resp.WriteSimpleString(ctx.W, ok)
}

// handleKeys supports only the `*` pattern, listing every stored key;
// any other pattern is a protocol error since glob-style matching isn't
// implemented.
func handleKeys(ctx *Context, args ParsedArgs) error {
	pattern := args.Args[0]
	if string(pattern) != "*" {
		return protocolErrorf("unsupported KEYS pattern %q", pattern)
	}

	guard := ctx.DB.Read(0)
	keys := guard.Dataset().AllKeys()
	guard.Release()

	if err := resp.WriteArray(ctx.W, len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := resp.WriteBulkString(ctx.W, k); err != nil {
			return err
		}
	}
	return nil
}

func handleConfigGet(ctx *Context, args ParsedArgs) error {
	key := args.Args[0]

	// Config keys are stored lowercase; fold the requested name to match.
	value, found := ctx.DB.GetConfig(common.ToLowerASCII(key))

	if err := resp.WriteArray(ctx.W, 2); err != nil {
		return err
	}
	if err := resp.WriteBulkString(ctx.W, key); err != nil {
		return err
	}
	return resp.WriteBulkStringOpt(ctx.W, []byte(value), found)
}
