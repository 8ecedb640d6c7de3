package services

import (
	"errors"

	"tripform/internal/domain"
)

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is the dismissable toast shown after a submission.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
	Link        string `json:"link,omitempty"`
}

const (
	titleSuccess    = "PDF Enviado e Link Gerado!"
	titleValidation = "Erro de Validação"
	titleFailure    = "Erro na Operação"

	msgConnectivity = "Não foi possível conectar ao serviço do Google Drive. Verifique sua conexão com a internet. "
	msgNetworkHint  = "Isso pode ser um problema de CORS ou configuração do script no Google Drive. " +
		"Verifique se o Google Apps Script está implantado com acesso para 'Qualquer pessoa' e se a URL está correta."
	msgFieldsHint = "Verifique os campos destacados."
	msgUnknown    = "Ocorreu um erro desconhecido durante a operação."
)

func SuccessNotification(link string) Notification {
	return Notification{
		Title:       titleSuccess,
		Description: "PDF enviado para o Google Drive. Link: " + link + "\nAbrindo WhatsApp...",
		Variant:     VariantDefault,
		Link:        link,
	}
}

// FailureNotification picks the message from the error kind.
func FailureNotification(err error) Notification {
	n := Notification{Title: titleFailure, Variant: VariantDestructive}
	switch domain.Kind(err) {
	case domain.KindValidation:
		n.Title = titleValidation
		n.Description = msgFieldsHint
		var single domain.ValidationError
		if errors.As(err, &single) && single.Field == "signatureImage" {
			n.Description = "A assinatura é obrigatória."
		}
	case domain.KindNetwork:
		n.Description = msgConnectivity + msgNetworkHint
	case domain.KindUpload:
		n.Description = err.Error()
	default:
		if err == nil {
			n.Description = msgConnectivity + msgUnknown
			break
		}
		n.Description = msgConnectivity + "Detalhe: " + err.Error()
	}
	return n
}
