package repoargs

type RepositoryName string

const (
	AccountRepoName           RepositoryName = "account"
	LedgerRepoName            RepositoryName = "ledger"
	TransferRepoName          RepositoryName = "transfer"
	OrderRepoName             RepositoryName = "order"
	IdempotencyRepoName       RepositoryName = "idempotency"
	CredentialAttemptRepoName RepositoryName = "credential_attempt"
)
