package settings

// Storage keys. The names are shared with other clients of the same settings
// file and must not change.
const (
	KeyLaunchpadSlippage = "_sherex_lau_slp_"
	KeySwapSlippage      = "_sherex_swap_slippage_"
	KeyLiquiditySlippage = "_sherex_liquidity_slippage_"

	KeyRPCDev  = "_sherex_rpc_dev_"
	KeyRPCProd = "_sherex_rpc_prod_"

	KeyLocale = "i18nextLng"

	KeyTransactionFee = "_sherex_fee_"
	KeyPriorityLevel  = "_sherex_fee_level_"
	KeyPriorityMode   = "_sherex_fee_mode_"

	KeyUserAdded = "_sherex_u_added_"
	KeyAPRMode   = "_sherex_apr_"
	KeyExplorer  = "_sherex_explorer_"
	KeyAPIHost   = "_sherex_api_host_"

	KeyReferBannerShown           = "_sherex_is_refer_banner_shown_"
	KeyFeeDistributionBannerShown = "_sherex_is_fee_distribution_banner_shown_"
	KeyLaunchTokenBannerShown     = "_sherex_is_launch_token_banner_shown_"
	KeyMintGraduatedBannerHidden  = "_sherex_mint_graduated_banner_hidden_"
)
