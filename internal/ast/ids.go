package ast

type (
	// главные сущности
	FileID uint32
	ItemID uint32
	StmtID uint32
	ExprID uint32
	PatID  uint32
	TypeID uint32
	// подсущности
	PayloadID   uint32
	FieldID     uint32
	VariantID   uint32
	FnParamID   uint32
	TypeParamID uint32
	ArmID       uint32
	PatFieldID  uint32
)

const (
	NoFileID      FileID      = 0
	NoItemID      ItemID      = 0
	NoStmtID      StmtID      = 0
	NoExprID      ExprID      = 0
	NoPatID       PatID       = 0
	NoTypeID      TypeID      = 0
	NoPayloadID   PayloadID   = 0
	NoFieldID     FieldID     = 0
	NoVariantID   VariantID   = 0
	NoFnParamID   FnParamID   = 0
	NoTypeParamID TypeParamID = 0
	NoArmID       ArmID       = 0
	NoPatFieldID  PatFieldID  = 0
)

func (id FileID) IsValid() bool      { return id != NoFileID }
func (id ItemID) IsValid() bool      { return id != NoItemID }
func (id StmtID) IsValid() bool      { return id != NoStmtID }
func (id ExprID) IsValid() bool      { return id != NoExprID }
func (id PatID) IsValid() bool       { return id != NoPatID }
func (id TypeID) IsValid() bool      { return id != NoTypeID }
func (id PayloadID) IsValid() bool   { return id != NoPayloadID }
func (id FieldID) IsValid() bool     { return id != NoFieldID }
func (id VariantID) IsValid() bool   { return id != NoVariantID }
func (id FnParamID) IsValid() bool   { return id != NoFnParamID }
func (id TypeParamID) IsValid() bool { return id != NoTypeParamID }
func (id ArmID) IsValid() bool       { return id != NoArmID }
func (id PatFieldID) IsValid() bool  { return id != NoPatFieldID }
