package pongo

import (
	"reflect"

	"github.com/flosch/pongo2/v6"
)

// The stock for tag ranges maps in Go map order. This replacement walks
// fragments of the data tree in insertion order and behaves like the stock
// tag for every other value, including the reversed and sorted modifiers.
func init() {
	if err := pongo2.ReplaceTag("for", parseFor); err != nil {
		panic(err)
	}
}

type forNode struct {
	key      string
	value    string
	object   pongo2.IEvaluator
	reversed bool
	sorted   bool

	body  *pongo2.NodeWrapper
	empty *pongo2.NodeWrapper
}

// loopInfo is exposed as forloop inside the body.
type loopInfo struct {
	Counter     int
	Counter0    int
	Revcounter  int
	Revcounter0 int
	First       bool
	Last        bool
	Parentloop  *loopInfo
}

func (node *forNode) Execute(ctx *pongo2.ExecutionContext, w pongo2.TemplateWriter) (forErr *pongo2.Error) {
	forCtx := pongo2.NewChildExecutionContext(ctx)

	info := &loopInfo{First: true}
	if parent, ok := forCtx.Private["forloop"].(*loopInfo); ok {
		info.Parentloop = parent
	}
	forCtx.Private["forloop"] = info

	obj, err := node.object.Evaluate(forCtx)
	if err != nil {
		return err
	}

	step := func(idx, count int, key, value *pongo2.Value) bool {
		forCtx.Private[node.key] = key
		if value != nil && node.value != "" {
			forCtx.Private[node.value] = value
		}
		info.Counter = idx + 1
		info.Counter0 = idx
		info.First = idx == 0
		info.Last = idx+1 == count
		info.Revcounter = count - idx
		info.Revcounter0 = count - idx - 1

		if err := node.body.Execute(forCtx, w); err != nil {
			forErr = err
			return false
		}
		return true
	}
	empty := func() {
		if node.empty != nil {
			if err := node.empty.Execute(forCtx, w); err != nil {
				forErr = err
			}
		}
	}

	if names, m, ok := orderedFragment(ctx, obj); ok && !node.sorted {
		if node.reversed {
			for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
				names[i], names[j] = names[j], names[i]
			}
		}
		if len(names) == 0 {
			empty()
			return forErr
		}
		for idx, name := range names {
			if !step(idx, len(names), pongo2.AsValue(name), pongo2.AsValue(m[name])) {
				break
			}
		}
		return forErr
	}

	obj.IterateOrder(step, empty, node.reversed, node.sorted)
	return forErr
}

// orderedFragment reports the insertion order of obj when it is a fragment
// converted by the current render scope.
func orderedFragment(ctx *pongo2.ExecutionContext, obj *pongo2.Value) ([]string, map[string]any, bool) {
	sc, ok := ctx.Public[keyScope].(*scope)
	if !ok || obj == nil || obj.IsNil() {
		return nil, nil, false
	}
	m, ok := obj.Interface().(map[string]any)
	if !ok {
		return nil, nil, false
	}
	f, ok := sc.frags[reflect.ValueOf(m).Pointer()]
	if !ok || !f.Valid() {
		return nil, nil, false
	}
	return f.Names(), m, true
}

func parseFor(doc *pongo2.Parser, _ *pongo2.Token, args *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &forNode{}

	keyToken := args.MatchType(pongo2.TokenIdentifier)
	if keyToken == nil {
		return nil, args.Error("Expected an key identifier as first argument for 'for'-tag", nil)
	}
	node.key = keyToken.Val

	if args.Match(pongo2.TokenSymbol, ",") != nil {
		valueToken := args.MatchType(pongo2.TokenIdentifier)
		if valueToken == nil {
			return nil, args.Error("Value name must be an identifier.", nil)
		}
		node.value = valueToken.Val
	}

	if args.Match(pongo2.TokenKeyword, "in") == nil {
		return nil, args.Error("Expected keyword 'in'.", nil)
	}

	object, err := args.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.object = object

	if args.MatchOne(pongo2.TokenIdentifier, "reversed") != nil {
		node.reversed = true
	}
	if args.MatchOne(pongo2.TokenIdentifier, "sorted") != nil {
		node.sorted = true
	}
	if args.Remaining() > 0 {
		return nil, args.Error("Malformed for-loop arguments.", nil)
	}

	body, endArgs, err := doc.WrapUntilTag("empty", "endfor")
	if err != nil {
		return nil, err
	}
	if endArgs.Count() > 0 {
		return nil, endArgs.Error("Arguments not allowed here.", nil)
	}
	node.body = body

	if body.Endtag == "empty" {
		empty, endArgs, err := doc.WrapUntilTag("endfor")
		if err != nil {
			return nil, err
		}
		if endArgs.Count() > 0 {
			return nil, endArgs.Error("Arguments not allowed here.", nil)
		}
		node.empty = empty
	}

	return node, nil
}
