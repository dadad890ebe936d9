// Package abrasf assembles NFS-e invoices into the ABRASF v1.0 XML layout.
package abrasf

import "encoding/xml"

// Namespace is the ABRASF NFS-e schema namespace.
const Namespace = "http://www.abrasf.org.br/nfse.xsd"

// Leaf elements are plain strings without omitempty on purpose: the schema
// expects optional data as present-but-empty elements, never absent ones.

// ConsultarNfseFaixaResposta is the compliance envelope wrapping a single
// generated invoice record.
type ConsultarNfseFaixaResposta struct {
	XMLName   xml.Name  `xml:"ConsultarNfseFaixaResposta"`
	Xmlns     string    `xml:"xmlns,attr"`
	ListaNfse ListaNfse `xml:"ListaNfse"`
}

type ListaNfse struct {
	CompNfse CompNfse `xml:"CompNfse"`
}

type CompNfse struct {
	Nfse Nfse `xml:"Nfse"`
}

type Nfse struct {
	Versao  string  `xml:"versao,attr"`
	InfNfse InfNfse `xml:"InfNfse"`
}

type InfNfse struct {
	Numero                     string       `xml:"Numero"`
	CodigoVerificacao          string       `xml:"CodigoVerificacao"`
	DataEmissao                string       `xml:"DataEmissao"`
	ValoresNfse                ValoresNfse  `xml:"ValoresNfse"`
	PrestadorServico           Prestador    `xml:"PrestadorServico"`
	OrgaoGerador               OrgaoGerador `xml:"OrgaoGerador"`
	DeclaracaoPrestacaoServico Declaracao   `xml:"DeclaracaoPrestacaoServico"`
}

type ValoresNfse struct {
	BaseCalculo      string `xml:"BaseCalculo"`
	Aliquota         string `xml:"Aliquota"`
	ValorIss         string `xml:"ValorIss"`
	ValorLiquidoNfse string `xml:"ValorLiquidoNfse"`
}

type Prestador struct {
	IdentificacaoPrestador IdentificacaoPrestador `xml:"IdentificacaoPrestador"`
	RazaoSocial            string                 `xml:"RazaoSocial"`
	NomeFantasia           string                 `xml:"NomeFantasia"`
	Endereco               Endereco               `xml:"Endereco"`
	Contato                Contato                `xml:"Contato"`
}

type IdentificacaoPrestador struct {
	CpfCnpj            CpfCnpj `xml:"CpfCnpj"`
	InscricaoMunicipal string  `xml:"InscricaoMunicipal"`
}

// CpfCnpj is a schema choice: exactly one of the two children is rendered
// for a classified document, neither for a missing one.
type CpfCnpj struct {
	Cpf  string `xml:"Cpf,omitempty"`
	Cnpj string `xml:"Cnpj,omitempty"`
}

type Endereco struct {
	Endereco        string `xml:"Endereco"`
	Numero          string `xml:"Numero"`
	Complemento     string `xml:"Complemento"`
	Bairro          string `xml:"Bairro"`
	CodigoMunicipio string `xml:"CodigoMunicipio"`
	Uf              string `xml:"Uf"`
	Cep             string `xml:"Cep"`
}

type Contato struct {
	Telefone string `xml:"Telefone"`
	Email    string `xml:"Email"`
}

type OrgaoGerador struct {
	CodigoMunicipio string `xml:"CodigoMunicipio"`
	Uf              string `xml:"Uf"`
}

type Declaracao struct {
	InfDeclaracaoPrestacaoServico InfDeclaracao `xml:"InfDeclaracaoPrestacaoServico"`
}

type InfDeclaracao struct {
	Rps         Rps                  `xml:"Rps"`
	Competencia string               `xml:"Competencia"`
	Servico     Servico              `xml:"Servico"`
	Prestador   IdentificacaoSimples `xml:"Prestador"`
	Tomador     Tomador              `xml:"Tomador"`
}

type Rps struct {
	IdentificacaoRps IdentificacaoRps `xml:"IdentificacaoRps"`
	DataEmissao      string           `xml:"DataEmissao"`
	Status           string           `xml:"Status"`
}

type IdentificacaoRps struct {
	Numero string `xml:"Numero"`
	Serie  string `xml:"Serie"`
	Tipo   string `xml:"Tipo"`
}

type Servico struct {
	Valores                   Valores `xml:"Valores"`
	IssRetido                 string  `xml:"IssRetido"`
	ItemListaServico          string  `xml:"ItemListaServico"`
	CodigoCnae                string  `xml:"CodigoCnae"`
	CodigoTributacaoMunicipio string  `xml:"CodigoTributacaoMunicipio"`
	Discriminacao             string  `xml:"Discriminacao"`
	CodigoMunicipio           string  `xml:"CodigoMunicipio"`
	ExigibilidadeISS          string  `xml:"ExigibilidadeISS"`
	MunicipioIncidencia       string  `xml:"MunicipioIncidencia"`
}

type Valores struct {
	ValorServicos          string `xml:"ValorServicos"`
	ValorDeducoes          string `xml:"ValorDeducoes"`
	ValorPis               string `xml:"ValorPis"`
	ValorCofins            string `xml:"ValorCofins"`
	ValorInss              string `xml:"ValorInss"`
	ValorIr                string `xml:"ValorIr"`
	ValorCsll              string `xml:"ValorCsll"`
	OutrasRetencoes        string `xml:"OutrasRetencoes"`
	ValorIss               string `xml:"ValorIss"`
	BaseCalculo            string `xml:"BaseCalculo"`
	Aliquota               string `xml:"Aliquota"`
	ValorLiquidoNfse       string `xml:"ValorLiquidoNfse"`
	DescontoIncondicionado string `xml:"DescontoIncondicionado"`
	DescontoCondicionado   string `xml:"DescontoCondicionado"`
}

type IdentificacaoSimples struct {
	CpfCnpj            CpfCnpj `xml:"CpfCnpj"`
	InscricaoMunicipal string  `xml:"InscricaoMunicipal"`
}

type Tomador struct {
	IdentificacaoTomador IdentificacaoTomador `xml:"IdentificacaoTomador"`
	RazaoSocial          string               `xml:"RazaoSocial"`
	Endereco             Endereco             `xml:"Endereco"`
	Contato              Contato              `xml:"Contato"`
}

type IdentificacaoTomador struct {
	CpfCnpj            CpfCnpj `xml:"CpfCnpj"`
	InscricaoMunicipal string  `xml:"InscricaoMunicipal"`
}
