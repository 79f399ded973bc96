package script

// Node positions are byte offsets into the parsed source.
type Pos int

type Expr interface{ pos() Pos }
type Stmt interface{ pos() Pos }

// Pattern is a binding target: *Ident, *ObjectPattern, *ArrayPattern or
// *AssignPattern.
type Pattern interface{ pos() Pos }

type (
	NumberLit struct {
		At    Pos
		Value float64
	}
	StringLit struct {
		At    Pos
		Value string
	}
	BoolLit struct {
		At    Pos
		Value bool
	}
	NullLit struct {
		At Pos
	}
	TemplateLit struct {
		At     Pos
		Quasis []string
		Exprs  []Expr
	}
	Ident struct {
		At   Pos
		Name string
	}
	ArrayLit struct {
		At    Pos
		Elems []Expr // nil entries are holes
	}
	ObjectLit struct {
		At    Pos
		Props []*Property
	}
	Property struct {
		At       Pos
		Key      Expr // *StringLit for plain keys
		Computed bool
		Value    Expr
		Spread   bool
	}
	FuncLit struct {
		At       Pos
		Name     string
		Params   []Pattern
		Rest     Pattern
		Body     *BlockStmt
		ExprBody Expr
		Arrow    bool
	}
	UnaryExpr struct {
		At Pos
		Op string
		X  Expr
	}
	UpdateExpr struct {
		At     Pos
		Op     string
		Prefix bool
		X      Expr
	}
	BinaryExpr struct {
		At   Pos
		Op   string
		L, R Expr
	}
	LogicalExpr struct {
		At   Pos
		Op   string
		L, R Expr
	}
	AssignExpr struct {
		At     Pos
		Op     string
		Target Expr
		Value  Expr
	}
	CondExpr struct {
		At               Pos
		Test, Then, Else Expr
	}
	CallExpr struct {
		At       Pos
		Callee   Expr
		Args     []Expr
		Optional bool
	}
	NewExpr struct {
		At     Pos
		Callee Expr
		Args   []Expr
	}
	MemberExpr struct {
		At       Pos
		Object   Expr
		Prop     Expr // *StringLit unless Computed
		Computed bool
		Optional bool
	}
	SpreadExpr struct {
		At Pos
		X  Expr
	}
	SeqExpr struct {
		At    Pos
		Exprs []Expr
	}
)

type (
	ObjectPattern struct {
		At    Pos
		Props []*PatternProp
		Rest  Pattern
	}
	PatternProp struct {
		Key      Expr
		Computed bool
		Value    Pattern
	}
	ArrayPattern struct {
		At    Pos
		Elems []Pattern // nil entries are skipped slots
		Rest  Pattern
	}
	AssignPattern struct {
		At      Pos
		Target  Pattern
		Default Expr
	}
)

type (
	VarDecl struct {
		At    Pos
		Kind  string
		Decls []*Declarator
	}
	Declarator struct {
		Target Pattern
		Init   Expr
	}
	FuncDecl struct {
		At   Pos
		Func *FuncLit
	}
	ReturnStmt struct {
		At    Pos
		Value Expr
	}
	IfStmt struct {
		At   Pos
		Test Expr
		Then Stmt
		Else Stmt
	}
	ForStmt struct {
		At     Pos
		Init   Stmt
		Test   Expr
		Update Expr
		Body   Stmt
	}
	ForOfStmt struct {
		At     Pos
		Kind   string
		Target Pattern
		Iter   Expr
		In     bool
		Body   Stmt
	}
	WhileStmt struct {
		At      Pos
		Test    Expr
		Body    Stmt
		DoWhile bool
	}
	BreakStmt struct {
		At Pos
	}
	ContinueStmt struct {
		At Pos
	}
	ThrowStmt struct {
		At    Pos
		Value Expr
	}
	TryStmt struct {
		At      Pos
		Block   *BlockStmt
		Param   Pattern
		Handler *BlockStmt
		Finally *BlockStmt
	}
	SwitchStmt struct {
		At    Pos
		Disc  Expr
		Cases []*SwitchCase
	}
	SwitchCase struct {
		Test Expr // nil for default
		Body []Stmt
	}
	BlockStmt struct {
		At   Pos
		Body []Stmt
	}
	ExprStmt struct {
		At Pos
		X  Expr
	}
	EmptyStmt struct {
		At Pos
	}
)

func (n *NumberLit) pos() Pos     { return n.At }
func (n *StringLit) pos() Pos     { return n.At }
func (n *BoolLit) pos() Pos       { return n.At }
func (n *NullLit) pos() Pos       { return n.At }
func (n *TemplateLit) pos() Pos   { return n.At }
func (n *Ident) pos() Pos         { return n.At }
func (n *ArrayLit) pos() Pos      { return n.At }
func (n *ObjectLit) pos() Pos     { return n.At }
func (n *FuncLit) pos() Pos       { return n.At }
func (n *UnaryExpr) pos() Pos     { return n.At }
func (n *UpdateExpr) pos() Pos    { return n.At }
func (n *BinaryExpr) pos() Pos    { return n.At }
func (n *LogicalExpr) pos() Pos   { return n.At }
func (n *AssignExpr) pos() Pos    { return n.At }
func (n *CondExpr) pos() Pos      { return n.At }
func (n *CallExpr) pos() Pos      { return n.At }
func (n *NewExpr) pos() Pos       { return n.At }
func (n *MemberExpr) pos() Pos    { return n.At }
func (n *SpreadExpr) pos() Pos    { return n.At }
func (n *SeqExpr) pos() Pos       { return n.At }
func (n *ObjectPattern) pos() Pos { return n.At }
func (n *ArrayPattern) pos() Pos  { return n.At }
func (n *AssignPattern) pos() Pos { return n.At }
func (n *VarDecl) pos() Pos       { return n.At }
func (n *FuncDecl) pos() Pos      { return n.At }
func (n *ReturnStmt) pos() Pos    { return n.At }
func (n *IfStmt) pos() Pos        { return n.At }
func (n *ForStmt) pos() Pos       { return n.At }
func (n *ForOfStmt) pos() Pos     { return n.At }
func (n *WhileStmt) pos() Pos     { return n.At }
func (n *BreakStmt) pos() Pos     { return n.At }
func (n *ContinueStmt) pos() Pos  { return n.At }
func (n *ThrowStmt) pos() Pos     { return n.At }
func (n *TryStmt) pos() Pos       { return n.At }
func (n *SwitchStmt) pos() Pos    { return n.At }
func (n *BlockStmt) pos() Pos     { return n.At }
func (n *ExprStmt) pos() Pos      { return n.At }
func (n *EmptyStmt) pos() Pos     { return n.At }

// Program is a parsed component module.
type Program struct {
	Body []Stmt
	// DefaultExport is set when the source still carries an export default
	// of a named declaration.
	DefaultExport string
	lines         []int
}

// Position converts a byte offset to a 1-based line and column.
func (p *Program) Position(at Pos) (line, col int) {
	return position(p.lines, int(at))
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func position(lines []int, off int) (int, int) {
	lo, hi := 0, len(lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lines[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, off - lines[lo] + 1
}

// ComponentNames lists top-level declarations whose names start with an
// upper-case letter and are bound to functions, in source order.
func (p *Program) ComponentNames() []string {
	var names []string
	for _, st := range p.Body {
		switch s := st.(type) {
		case *FuncDecl:
			if isComponentName(s.Func.Name) {
				names = append(names, s.Func.Name)
			}
		case *VarDecl:
			for _, d := range s.Decls {
				id, ok := d.Target.(*Ident)
				if !ok || !isComponentName(id.Name) {
					continue
				}
				if isFunctionInit(d.Init) {
					names = append(names, id.Name)
				}
			}
		}
	}
	return names
}

func isFunctionInit(e Expr) bool {
	switch x := e.(type) {
	case *FuncLit:
		return true
	case *CallExpr:
		// memo(fn), forwardRef(fn)
		for _, a := range x.Args {
			if isFunctionInit(a) {
				return true
			}
		}
	}
	return false
}

func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
