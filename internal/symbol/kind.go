package symbol

import protocol "github.com/tliron/glsp/protocol_3_16"

// Kind is the normalized kind of a symbol. Raw kinds reported by language
// servers are mapped once when a tree is built.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindNamespace
	KindClass
	KindStruct
	KindEnum
	KindEnumMember
	KindInterface
	KindFunction
	KindMethod
	KindConstructor
	KindOperator
	KindField
	KindProperty
	KindVariable
	KindConstant
	KindTypeParameter
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindFile:          "file",
	KindNamespace:     "namespace",
	KindClass:         "class",
	KindStruct:        "struct",
	KindEnum:          "enum",
	KindEnumMember:    "enum_member",
	KindInterface:     "interface",
	KindFunction:      "function",
	KindMethod:        "method",
	KindConstructor:   "constructor",
	KindOperator:      "operator",
	KindField:         "field",
	KindProperty:      "property",
	KindVariable:      "variable",
	KindConstant:      "constant",
	KindTypeParameter: "type_parameter",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// KindFromProtocol maps an LSP symbol kind.
func KindFromProtocol(k protocol.SymbolKind) Kind {
	switch k {
	case protocol.SymbolKindFile, protocol.SymbolKindModule:
		return KindFile
	case protocol.SymbolKindNamespace, protocol.SymbolKindPackage:
		return KindNamespace
	case protocol.SymbolKindClass:
		return KindClass
	case protocol.SymbolKindStruct:
		return KindStruct
	case protocol.SymbolKindEnum:
		return KindEnum
	case protocol.SymbolKindEnumMember:
		return KindEnumMember
	case protocol.SymbolKindInterface:
		return KindInterface
	case protocol.SymbolKindFunction:
		return KindFunction
	case protocol.SymbolKindMethod:
		return KindMethod
	case protocol.SymbolKindConstructor:
		return KindConstructor
	case protocol.SymbolKindOperator:
		return KindOperator
	case protocol.SymbolKindField:
		return KindField
	case protocol.SymbolKindProperty:
		return KindProperty
	case protocol.SymbolKindVariable:
		return KindVariable
	case protocol.SymbolKindConstant:
		return KindConstant
	case protocol.SymbolKindTypeParameter:
		return KindTypeParameter
	}
	return KindUnknown
}

// Protocol returns the LSP symbol kind.
func (k Kind) Protocol() protocol.SymbolKind {
	switch k {
	case KindFile:
		return protocol.SymbolKindFile
	case KindNamespace:
		return protocol.SymbolKindNamespace
	case KindClass:
		return protocol.SymbolKindClass
	case KindStruct:
		return protocol.SymbolKindStruct
	case KindEnum:
		return protocol.SymbolKindEnum
	case KindEnumMember:
		return protocol.SymbolKindEnumMember
	case KindInterface:
		return protocol.SymbolKindInterface
	case KindFunction:
		return protocol.SymbolKindFunction
	case KindMethod:
		return protocol.SymbolKindMethod
	case KindConstructor:
		return protocol.SymbolKindConstructor
	case KindOperator:
		return protocol.SymbolKindOperator
	case KindField:
		return protocol.SymbolKindField
	case KindProperty:
		return protocol.SymbolKindProperty
	case KindConstant:
		return protocol.SymbolKindConstant
	case KindTypeParameter:
		return protocol.SymbolKindTypeParameter
	}
	return protocol.SymbolKindVariable
}

// IsFunction reports whether the kind is any kind of function.
func (k Kind) IsFunction() bool {
	switch k {
	case KindFunction, KindMethod, KindConstructor, KindOperator:
		return true
	}
	return false
}

// IsClassType reports whether the kind is a class or struct.
func (k Kind) IsClassType() bool {
	return k == KindClass || k == KindStruct
}

// IsVariable reports whether the kind declares storage.
func (k Kind) IsVariable() bool {
	switch k {
	case KindVariable, KindField, KindProperty, KindConstant:
		return true
	}
	return false
}
