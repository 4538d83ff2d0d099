package model

// Status 文档生命周期状态，取值即落库值.
type Status string

const (
	StatusActive     Status = "Ativo"
	StatusSuperseded Status = "Substituido"
	StatusArchived   Status = "Arquivado"
)

// Domain 文档所属业务域.
type Domain string

const (
	DomainAdministrative Domain = "Administrativo"
	DomainClinical       Domain = "Clinico"
	DomainFinancial      Domain = "Financeiro"
	DomainLegal          Domain = "Juridico"
)

// Category 文档分类.
type Category string

const (
	CategoryIdentification Category = "Identificacao"
	CategoryContract       Category = "Contrato"
	CategoryReport         Category = "Laudo"
	CategoryPrescription   Category = "Receita"
	CategoryExam           Category = "Exame"
	CategoryEvolution      Category = "Evolucao"
	CategoryConsent        Category = "Termo"
	CategoryReceipt        Category = "Comprovante"
	CategorySummary        Category = "Relatorio"
	CategoryOther          Category = "Outros"
)

// SignatureType 签名方式.
type SignatureType string

const (
	SignatureNone        SignatureType = "Nenhuma"
	SignatureHandwritten SignatureType = "Manuscrita"
	SignatureElectronic  SignatureType = "Eletronica"
	SignatureDigital     SignatureType = "Digital"
)

// AccessRole 查看文档所需的最低角色，空值表示不限制.
type AccessRole string

const (
	RoleViewer AccessRole = "viewer"
	RoleEditor AccessRole = "editor"
	RoleAdmin  AccessRole = "admin"
	RoleOwner  AccessRole = "owner"
)

var (
	statuses   = map[Status]bool{StatusActive: true, StatusSuperseded: true, StatusArchived: true}
	domains    = map[Domain]bool{DomainAdministrative: true, DomainClinical: true, DomainFinancial: true, DomainLegal: true}
	categories = map[Category]bool{
		CategoryIdentification: true, CategoryContract: true, CategoryReport: true, CategoryPrescription: true,
		CategoryExam: true, CategoryEvolution: true, CategoryConsent: true, CategoryReceipt: true,
		CategorySummary: true, CategoryOther: true,
	}
	signatureTypes = map[SignatureType]bool{
		SignatureNone: true, SignatureHandwritten: true, SignatureElectronic: true, SignatureDigital: true,
	}
	accessRoles = map[AccessRole]bool{RoleViewer: true, RoleEditor: true, RoleAdmin: true, RoleOwner: true}
)

func (s Status) Valid() bool { return statuses[s] }
func (d Domain) Valid() bool { return domains[d] }
func (c Category) Valid() bool { return categories[c] }
func (s SignatureType) Valid() bool { return signatureTypes[s] }

// Valid 空角色同样合法.
func (r AccessRole) Valid() bool { return r == "" || accessRoles[r] }

// Categories 返回全部分类，供 CLI 与接口文档展示.
func Categories() []Category {
	return []Category{
		CategoryIdentification, CategoryContract, CategoryReport, CategoryPrescription, CategoryExam,
		CategoryEvolution, CategoryConsent, CategoryReceipt, CategorySummary, CategoryOther,
	}
}
