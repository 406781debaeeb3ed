package parser

type NodeKind int

const (
	KindError NodeKind = iota

	kindDeclBegin
	// Compilation unit level
	KindCompilationUnit
	KindNamespaceDecl
	KindUsingDirective
	KindAliasDirective

	// Type declarations
	KindClassDecl
	KindStructDecl
	KindInterfaceDecl
	KindEnumDecl
	KindEnumMember
	KindDelegateDecl
	KindTypeBody
	KindBaseList

	// Members
	KindFieldDecl
	KindConstDecl
	KindVariableDeclarator
	KindMethodDecl
	KindConstructorDecl
	KindConstructorInitializer
	KindDestructorDecl
	KindPropertyDecl
	KindIndexerDecl
	KindAccessor
	KindEventDecl
	KindOperatorDecl
	KindConversionDecl
	KindModelFieldDecl
	KindInvariantDecl
	KindExplicitInterface

	// Modifiers, attributes, generics, parameters
	KindModifiers
	KindAttributeSection
	KindAttribute
	KindAttributeArgument
	KindTypeParameters
	KindTypeParameter
	KindConstraintClause
	KindConstraint
	KindParameters
	KindParameter

	// Contract clauses
	KindRequires
	KindEnsures
	KindExceptionalEnsures
	KindThrowsClause
	KindModifies
	kindDeclEnd

	kindStmtBegin
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindIfStmt
	KindWhileStmt
	KindDoStmt
	KindForStmt
	KindForInit
	KindForUpdate
	KindForeachStmt
	KindSwitchStmt
	KindSwitchSection
	KindCaseLabel
	KindDefaultLabel
	KindTryStmt
	KindCatchClause
	KindFinallyClause
	KindReturnStmt
	KindThrowStmt
	KindYieldReturnStmt
	KindYieldBreakStmt
	KindBreakStmt
	KindContinueStmt
	KindGotoStmt
	KindLabeledStmt
	KindLocalVarDecl
	KindLocalConstDecl
	KindLockStmt
	KindUsingStmt
	KindFixedStmt
	KindCheckedStmt
	KindUncheckedStmt
	KindUnsafeStmt
	KindAssertStmt
	KindAssumeStmt
	KindAcquireStmt
	KindExposeStmt
	KindReadStmt
	KindWriteStmt
	kindStmtEnd

	kindExprBegin
	KindIdentifier
	KindGenericName
	KindLiteral
	KindThis
	KindBase
	KindResult
	KindBinaryExpr
	KindUnaryExpr
	KindPrefixExpr
	KindPostfixExpr
	KindConditionalExpr
	KindAssignExpr
	KindCastExpr
	KindIsExpr
	KindAsExpr
	KindNewExpr
	KindNewArrayExpr
	KindArrayInit
	KindStackallocExpr
	KindIndexExpr
	KindCallExpr
	KindArguments
	KindArgument
	KindMemberAccess
	KindPointerAccess
	KindParenExpr
	KindTypeofExpr
	KindSizeofExpr
	KindDefaultExpr
	KindCheckedExpr
	KindUncheckedExpr
	KindQuantifier
	KindComprehension
	KindDisplay
	KindBinding
	KindElement
	KindDefaultElement
	KindLambdaExpr
	KindAnonymousMethod
	kindExprEnd

	kindTypeBegin
	KindPredefinedType
	KindNamedType
	KindQualifiedType
	KindAliasQualifiedType
	KindGenericType
	KindTypeArguments
	KindArrayType
	KindPointerType
	KindNullableType
	KindNonNullType
	kindTypeEnd
)

var nodeKindNames = map[NodeKind]string{
	KindError:                  "Error",
	KindCompilationUnit:        "CompilationUnit",
	KindNamespaceDecl:          "NamespaceDecl",
	KindUsingDirective:         "UsingDirective",
	KindAliasDirective:         "AliasDirective",
	KindClassDecl:              "ClassDecl",
	KindStructDecl:             "StructDecl",
	KindInterfaceDecl:          "InterfaceDecl",
	KindEnumDecl:               "EnumDecl",
	KindEnumMember:             "EnumMember",
	KindDelegateDecl:           "DelegateDecl",
	KindTypeBody:               "TypeBody",
	KindBaseList:               "BaseList",
	KindFieldDecl:              "FieldDecl",
	KindConstDecl:              "ConstDecl",
	KindVariableDeclarator:     "VariableDeclarator",
	KindMethodDecl:             "MethodDecl",
	KindConstructorDecl:        "ConstructorDecl",
	KindConstructorInitializer: "ConstructorInitializer",
	KindDestructorDecl:         "DestructorDecl",
	KindPropertyDecl:           "PropertyDecl",
	KindIndexerDecl:            "IndexerDecl",
	KindAccessor:               "Accessor",
	KindEventDecl:              "EventDecl",
	KindOperatorDecl:           "OperatorDecl",
	KindConversionDecl:         "ConversionDecl",
	KindModelFieldDecl:         "ModelFieldDecl",
	KindInvariantDecl:          "InvariantDecl",
	KindExplicitInterface:      "ExplicitInterface",
	KindModifiers:              "Modifiers",
	KindAttributeSection:       "AttributeSection",
	KindAttribute:              "Attribute",
	KindAttributeArgument:      "AttributeArgument",
	KindTypeParameters:         "TypeParameters",
	KindTypeParameter:          "TypeParameter",
	KindConstraintClause:       "ConstraintClause",
	KindConstraint:             "Constraint",
	KindParameters:             "Parameters",
	KindParameter:              "Parameter",
	KindRequires:               "Requires",
	KindEnsures:                "Ensures",
	KindExceptionalEnsures:     "ExceptionalEnsures",
	KindThrowsClause:           "ThrowsClause",
	KindModifies:               "Modifies",
	KindBlock:                  "Block",
	KindEmptyStmt:              "EmptyStmt",
	KindExprStmt:               "ExprStmt",
	KindIfStmt:                 "IfStmt",
	KindWhileStmt:              "WhileStmt",
	KindDoStmt:                 "DoStmt",
	KindForStmt:                "ForStmt",
	KindForInit:                "ForInit",
	KindForUpdate:              "ForUpdate",
	KindForeachStmt:            "ForeachStmt",
	KindSwitchStmt:             "SwitchStmt",
	KindSwitchSection:          "SwitchSection",
	KindCaseLabel:              "CaseLabel",
	KindDefaultLabel:           "DefaultLabel",
	KindTryStmt:                "TryStmt",
	KindCatchClause:            "CatchClause",
	KindFinallyClause:          "FinallyClause",
	KindReturnStmt:             "ReturnStmt",
	KindThrowStmt:              "ThrowStmt",
	KindYieldReturnStmt:        "YieldReturnStmt",
	KindYieldBreakStmt:         "YieldBreakStmt",
	KindBreakStmt:              "BreakStmt",
	KindContinueStmt:           "ContinueStmt",
	KindGotoStmt:               "GotoStmt",
	KindLabeledStmt:            "LabeledStmt",
	KindLocalVarDecl:           "LocalVarDecl",
	KindLocalConstDecl:         "LocalConstDecl",
	KindLockStmt:               "LockStmt",
	KindUsingStmt:              "UsingStmt",
	KindFixedStmt:              "FixedStmt",
	KindCheckedStmt:            "CheckedStmt",
	KindUncheckedStmt:          "UncheckedStmt",
	KindUnsafeStmt:             "UnsafeStmt",
	KindAssertStmt:             "AssertStmt",
	KindAssumeStmt:             "AssumeStmt",
	KindAcquireStmt:            "AcquireStmt",
	KindExposeStmt:             "ExposeStmt",
	KindReadStmt:               "ReadStmt",
	KindWriteStmt:              "WriteStmt",
	KindIdentifier:             "Identifier",
	KindGenericName:            "GenericName",
	KindLiteral:                "Literal",
	KindThis:                   "This",
	KindBase:                   "Base",
	KindResult:                 "Result",
	KindBinaryExpr:             "BinaryExpr",
	KindUnaryExpr:              "UnaryExpr",
	KindPrefixExpr:             "PrefixExpr",
	KindPostfixExpr:            "PostfixExpr",
	KindConditionalExpr:        "ConditionalExpr",
	KindAssignExpr:             "AssignExpr",
	KindCastExpr:               "CastExpr",
	KindIsExpr:                 "IsExpr",
	KindAsExpr:                 "AsExpr",
	KindNewExpr:                "NewExpr",
	KindNewArrayExpr:           "NewArrayExpr",
	KindArrayInit:              "ArrayInit",
	KindStackallocExpr:         "StackallocExpr",
	KindIndexExpr:              "IndexExpr",
	KindCallExpr:               "CallExpr",
	KindArguments:              "Arguments",
	KindArgument:               "Argument",
	KindMemberAccess:           "MemberAccess",
	KindPointerAccess:          "PointerAccess",
	KindParenExpr:              "ParenExpr",
	KindTypeofExpr:             "TypeofExpr",
	KindSizeofExpr:             "SizeofExpr",
	KindDefaultExpr:            "DefaultExpr",
	KindCheckedExpr:            "CheckedExpr",
	KindUncheckedExpr:          "UncheckedExpr",
	KindQuantifier:             "Quantifier",
	KindComprehension:          "Comprehension",
	KindDisplay:                "Display",
	KindBinding:                "Binding",
	KindElement:                "Element",
	KindDefaultElement:         "DefaultElement",
	KindLambdaExpr:             "LambdaExpr",
	KindAnonymousMethod:        "AnonymousMethod",
	KindPredefinedType:         "PredefinedType",
	KindNamedType:              "NamedType",
	KindQualifiedType:          "QualifiedType",
	KindAliasQualifiedType:     "AliasQualifiedType",
	KindGenericType:            "GenericType",
	KindTypeArguments:          "TypeArguments",
	KindArrayType:              "ArrayType",
	KindPointerType:            "PointerType",
	KindNullableType:           "NullableType",
	KindNonNullType:            "NonNullType",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k NodeKind) IsDecl() bool { return k > kindDeclBegin && k < kindDeclEnd }
func (k NodeKind) IsStmt() bool { return k > kindStmtBegin && k < kindStmtEnd }
func (k NodeKind) IsExpr() bool { return k > kindExprBegin && k < kindExprEnd }
func (k NodeKind) IsType() bool { return k > kindTypeBegin && k < kindTypeEnd }

// IsTypeDecl reports whether k declares a named type.
func (k NodeKind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindStructDecl, KindInterfaceDecl, KindEnumDecl, KindDelegateDecl:
		return true
	}
	return false
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Contract collects the clauses written between a member's signature and
// its body, each list in source order.
type Contract struct {
	Requires           []*Node
	Ensures            []*Node
	ExceptionalEnsures []*Node
	Throws             []*Node
	Modifies           []*Node
}

func (c *Contract) IsEmpty() bool {
	return c == nil || len(c.Requires)+len(c.Ensures)+len(c.ExceptionalEnsures)+len(c.Throws)+len(c.Modifies) == 0
}

// TypeContract holds a type's invariants and model fields in source order.
type TypeContract struct {
	Invariants  []*Node
	ModelFields []*Node
}

// Node is a syntax tree node. The families of NodeKind decide which of the
// optional fields are meaningful: Mods on declarations, Contract on
// methods, constructors, operators, accessors and delegates, TypeContract
// on type declarations.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
	Mods     Modifier

	Contract     *Contract
	TypeContract *TypeContract

	// NoBody marks a member whose body was written as ';'.
	NoBody bool

	// Complete points from a partial type fragment to the merged type.
	// The fragment does not own it.
	Complete *Node
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Name returns the declared name of a declaration: the literal of its
// first direct Identifier child.
func (n *Node) Name() string {
	if id := n.FirstChildOfKind(KindIdentifier); id != nil {
		return id.TokenLiteral()
	}
	return ""
}

// Members returns the member declarations of a type declaration. For a
// partial fragment these live on the complete type.
func (n *Node) Members() []*Node {
	t := n
	if n.Complete != nil {
		t = n.Complete
	}
	if body := t.FirstChildOfKind(KindTypeBody); body != nil {
		return body.Children
	}
	return nil
}

// Walk calls fn for n and every descendant in depth-first order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) label(showPositions bool) string {
	result := n.Kind.String()
	if showPositions {
		result += " [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]"
	}
	if n.Token != nil {
		result += " " + n.Token.Literal
	}
	if n.Mods != 0 {
		result += " (" + n.Mods.String() + ")"
	}
	if n.NoBody {
		result += " ;"
	}
	if n.Error != nil {
		result += " ERROR: " + n.Error.Message
	}
	return result
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}

	result := prefix + n.label(showPositions) + "\n"
	for _, child := range n.Children {
		result += child.stringIndent(indent+1, showPositions)
	}
	return result
}
