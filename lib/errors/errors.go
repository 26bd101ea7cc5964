package errors

var (
	Unauthorized               = NewError(100, "caller is not a member")
	ProposalNotFound           = NewError(101, "proposal does not exist")
	ExecutionFailed            = NewError(102, "proposal execution failed")
	StorageRecordDoesNotExist  = NewError(110, "record does not exist in storage")
	StorageRecordAlreadyExists = NewError(111, "record already exists in storage")
	StorageCoreError           = NewError(112, "storage error")
	InvalidStorageConfig       = NewError(113, "invalid storage config")
	TransactionAlreadyOpened   = NewError(114, "storage transaction already opened")
	NotTransaction             = NewError(115, "storage is not in transaction")
	RegistryAlreadyExists      = NewError(120, "membership registry already written")
	RegistryDoesNotExist       = NewError(121, "membership registry not found; run genesis first")
	InvalidMemberAddress       = NewError(122, "invalid member address")
	InvalidVoteThreshold       = NewError(123, "invalid vote threshold")
	MemberNotFound             = NewError(124, "member does not exist")
	BadRequestParameter        = NewError(130, "request parameter is not well-formed")
	InvalidQueryString         = NewError(131, "found invalid query string")
	PageQueryLimitMaxExceed    = NewError(132, "limit exceeds maximum allowed")
	InvalidContentType         = NewError(133, "invalid 'Content-Type'")
	NotImplemented             = NewError(140, "not implemented")
	NotMatchHTTPRouter         = NewError(141, "not match http router")
)
